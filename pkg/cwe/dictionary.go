package cwe

// dictionary is a subset of the CWE catalog covering the classifications that appear in
// practice in NVD and OSS Index data. Identifiers outside this set resolve to nil and are
// omitted by callers.
var dictionary = map[int]string{
	16:   "Configuration",
	20:   "Improper Input Validation",
	22:   "Improper Limitation of a Pathname to a Restricted Directory ('Path Traversal')",
	59:   "Improper Link Resolution Before File Access ('Link Following')",
	74:   "Improper Neutralization of Special Elements in Output Used by a Downstream Component ('Injection')",
	77:   "Improper Neutralization of Special Elements used in a Command ('Command Injection')",
	78:   "Improper Neutralization of Special Elements used in an OS Command ('OS Command Injection')",
	79:   "Improper Neutralization of Input During Web Page Generation ('Cross-site Scripting')",
	88:   "Improper Neutralization of Argument Delimiters in a Command ('Argument Injection')",
	89:   "Improper Neutralization of Special Elements used in an SQL Command ('SQL Injection')",
	90:   "Improper Neutralization of Special Elements used in an LDAP Query ('LDAP Injection')",
	91:   "XML Injection (aka Blind XPath Injection)",
	93:   "Improper Neutralization of CRLF Sequences ('CRLF Injection')",
	94:   "Improper Control of Generation of Code ('Code Injection')",
	95:   "Improper Neutralization of Directives in Dynamically Evaluated Code ('Eval Injection')",
	113:  "Improper Neutralization of CRLF Sequences in HTTP Headers ('HTTP Request/Response Splitting')",
	119:  "Improper Restriction of Operations within the Bounds of a Memory Buffer",
	120:  "Buffer Copy without Checking Size of Input ('Classic Buffer Overflow')",
	125:  "Out-of-bounds Read",
	134:  "Use of Externally-Controlled Format String",
	190:  "Integer Overflow or Wraparound",
	200:  "Exposure of Sensitive Information to an Unauthorized Actor",
	209:  "Generation of Error Message Containing Sensitive Information",
	259:  "Use of Hard-coded Password",
	264:  "Permissions, Privileges, and Access Controls",
	269:  "Improper Privilege Management",
	276:  "Incorrect Default Permissions",
	287:  "Improper Authentication",
	290:  "Authentication Bypass by Spoofing",
	295:  "Improper Certificate Validation",
	306:  "Missing Authentication for Critical Function",
	310:  "Cryptographic Issues",
	311:  "Missing Encryption of Sensitive Data",
	312:  "Cleartext Storage of Sensitive Information",
	319:  "Cleartext Transmission of Sensitive Information",
	326:  "Inadequate Encryption Strength",
	327:  "Use of a Broken or Risky Cryptographic Algorithm",
	330:  "Use of Insufficiently Random Values",
	345:  "Insufficient Verification of Data Authenticity",
	346:  "Origin Validation Error",
	352:  "Cross-Site Request Forgery (CSRF)",
	362:  "Concurrent Execution using Shared Resource with Improper Synchronization ('Race Condition')",
	369:  "Divide By Zero",
	384:  "Session Fixation",
	400:  "Uncontrolled Resource Consumption",
	401:  "Missing Release of Memory after Effective Lifetime",
	404:  "Improper Resource Shutdown or Release",
	415:  "Double Free",
	416:  "Use After Free",
	426:  "Untrusted Search Path",
	427:  "Uncontrolled Search Path Element",
	434:  "Unrestricted Upload of File with Dangerous Type",
	436:  "Interpretation Conflict",
	441:  "Unintended Proxy or Intermediary ('Confused Deputy')",
	444:  "Inconsistent Interpretation of HTTP Requests ('HTTP Request/Response Smuggling')",
	476:  "NULL Pointer Dereference",
	494:  "Download of Code Without Integrity Check",
	502:  "Deserialization of Untrusted Data",
	521:  "Weak Password Requirements",
	522:  "Insufficiently Protected Credentials",
	532:  "Insertion of Sensitive Information into Log File",
	552:  "Files or Directories Accessible to External Parties",
	601:  "URL Redirection to Untrusted Site ('Open Redirect')",
	611:  "Improper Restriction of XML External Entity Reference",
	613:  "Insufficient Session Expiration",
	617:  "Reachable Assertion",
	639:  "Authorization Bypass Through User-Controlled Key",
	662:  "Improper Synchronization",
	665:  "Improper Initialization",
	668:  "Exposure of Resource to Wrong Sphere",
	674:  "Uncontrolled Recursion",
	681:  "Incorrect Conversion between Numeric Types",
	682:  "Incorrect Calculation",
	697:  "Incorrect Comparison",
	704:  "Incorrect Type Conversion or Cast",
	732:  "Incorrect Permission Assignment for Critical Resource",
	749:  "Exposed Dangerous Method or Function",
	754:  "Improper Check for Unusual or Exceptional Conditions",
	755:  "Improper Handling of Exceptional Conditions",
	763:  "Release of Invalid Pointer or Reference",
	770:  "Allocation of Resources Without Limits or Throttling",
	772:  "Missing Release of Resource after Effective Lifetime",
	776:  "Improper Restriction of Recursive Entity References in DTDs ('XML Entity Expansion')",
	787:  "Out-of-bounds Write",
	798:  "Use of Hard-coded Credentials",
	807:  "Reliance on Untrusted Inputs in a Security Decision",
	835:  "Loop with Unreachable Exit Condition ('Infinite Loop')",
	843:  "Access of Resource Using Incompatible Type ('Type Confusion')",
	862:  "Missing Authorization",
	863:  "Incorrect Authorization",
	908:  "Use of Uninitialized Resource",
	915:  "Improperly Controlled Modification of Dynamically-Determined Object Attributes",
	917:  "Improper Neutralization of Special Elements used in an Expression Language Statement ('Expression Language Injection')",
	918:  "Server-Side Request Forgery (SSRF)",
	1021: "Improper Restriction of Rendered UI Layers or Frames",
	1188: "Initialization of a Resource with an Insecure Default",
	1236: "Improper Neutralization of Formula Elements in a CSV File",
	1321: "Improperly Controlled Modification of Object Prototype Attributes ('Prototype Pollution')",
	1333: "Inefficient Regular Expression Complexity",
}
