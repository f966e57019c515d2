package event

import "github.com/wagoodman/go-partybus"

const (
	typePrefix = "vulnsync"

	// IndexCommit is published exactly once after a feed document has been fully consumed,
	// signaling downstream index maintenance.
	IndexCommit partybus.EventType = typePrefix + "-index-commit"

	// FeedIngestionStarted carries a progress monitor for an in-flight feed ingestion.
	FeedIngestionStarted partybus.EventType = typePrefix + "-feed-ingestion-started"

	// AnalysisCompleted is published after an analyzer finishes a component batch.
	AnalysisCompleted partybus.EventType = typePrefix + "-analysis-completed"

	// NewAssociation is published when an association passes notification criteria.
	NewAssociation partybus.EventType = typePrefix + "-new-association"

	// CLIExit signals the event loop that the foreground task has finished.
	CLIExit partybus.EventType = typePrefix + "-cli-exit"
)
