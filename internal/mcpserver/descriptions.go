package mcpserver

// Tool descriptions with interpretation guidance for LLMs.

func describeScan() string {
	return `Finds import bindings in JavaScript, TypeScript and Python files that are never referenced in the rest of their file, and records the scan for preview_patch.

USE WHEN:
- Cleaning up a module before review
- Checking whether a refactor left stale imports behind
- Preparing a patch with preview_patch

INTERPRETING RESULTS:
- Usage is textual: a name counts as used if it appears as a whole word outside strings, comments and import statements
- Star imports (from x import *) are never reported
- Side-effect imports (import 'x') bind nothing and are never reported
- duplicate_block issues flag tiny files with identical content

METRICS RETURNED:
- Issues: type, file, line, token, module, suggestion
- Stats: files scanned, unused imports, duplicate blocks
- Lang: which language families were scanned`
}

func describePreviewPatch() string {
	return `Builds reviewable patch artifacts that remove the unused imports found by the last scan. Source files are never modified by this tool.

USE WHEN:
- Reviewing the exact edits before applying them with the CLI (sweepstacx patch --apply)
- Estimating how many lines a cleanup removes

INTERPRETING RESULTS:
- remove-line: the whole import statement goes away
- edit-line: the statement is rebuilt without the unused names
- Files changed since the scan are re-checked; names used now are kept
- Files whose rewrite would not parse are left out

METRICS RETURNED:
- Patches: file, artifact path, edit summary, lines removed, full artifact text
- Scan runs first when no scan has been recorded for the path`
}
