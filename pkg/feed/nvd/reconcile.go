package nvd

import (
	"strings"

	"github.com/bastionlabs/vulnsync/internal/log"
	"github.com/bastionlabs/vulnsync/pkg/vuln"
)

// reconcileConfigurations flattens the boolean configuration tree of an item into a
// deduplicated list of applicability ranges.
func reconcileConfigurations(cveID string, cfg Configurations) []vuln.Range {
	var out []vuln.Range
	for _, node := range cfg.Nodes {
		out = append(out, reconcileNode(cveID, node)...)
	}
	return vuln.DedupeRanges(out)
}

// reconcileNode resolves a single root node. When the node has children, the children's
// matches are used in place of the node's own. Only matches explicitly marked vulnerable
// are retained.
//
// An AND node whose retained matches span both operating-system and application parts
// keeps only the application ones: the OS enumeration rides along to scope the platform
// and produces false positives when treated as a match in its own right. The exclusion
// is applied at this level only; deeper nesting is flattened without re-applying it,
// matching long-standing feed consumer behavior.
func reconcileNode(cveID string, node Node) []vuln.Range {
	matches := node.CpeMatch
	if len(node.Children) > 0 {
		matches = nil
		for _, child := range node.Children {
			matches = append(matches, child.CpeMatch...)
		}
	}

	var retained []vuln.Range
	for _, match := range matches {
		if !match.Vulnerable {
			continue
		}

		r, err := vuln.NewRangeFromCpe23(match.Cpe23Uri)
		if err != nil {
			log.WithFields("cve", cveID, "error", err).Warn("discarding unparseable CPE match")
			continue
		}

		r.Vulnerable = true
		r.VersionStartIncluding = match.VersionStartIncluding
		r.VersionStartExcluding = match.VersionStartExcluding
		r.VersionEndIncluding = match.VersionEndIncluding
		r.VersionEndExcluding = match.VersionEndExcluding
		retained = append(retained, *r)
	}

	if strings.EqualFold(node.Operator, "AND") && hasPart(retained, vuln.PartOperatingSystem) && hasPart(retained, vuln.PartApplication) {
		var apps []vuln.Range
		for _, r := range retained {
			if r.Part == vuln.PartApplication {
				apps = append(apps, r)
			}
		}
		return apps
	}

	return retained
}

func hasPart(ranges []vuln.Range, part vuln.PlatformPart) bool {
	for _, r := range ranges {
		if r.Part == part {
			return true
		}
	}
	return false
}
