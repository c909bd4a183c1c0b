// Package shared holds helpers used across the Global Insights Explorer codebase
// that do not belong to any single domain package.
//
// # Test Utilities
//
// The testutil subpackage provides:
//
//   - a buffered slog handler for asserting on structured log output
//   - a seven-table country CSV fixture written into a temp directory
//
// Example usage:
//
//	func TestLoad(t *testing.T) {
//	    dir := testutil.WriteCountryFixtures(t, t.TempDir())
//	    logger, logs := testutil.NewTestLogger(t)
//	    // build a processor over dir, then assert on logs
//	}
//
// This package must not import other internal packages.
package shared
