// Package files discovers generated artifacts on disk.
//
// Discovery lists files below a base directory by extension or glob pattern,
// newest first. The export service uses it to enumerate the export directory:
//
//	d := files.NewDiscovery(exportDir)
//	found, err := d.FindByExtensions("", "csv", "xlsx", "json", "db")
//
// A missing directory is reported as an empty list rather than an error, since the
// export directory only appears after the first export.
package files
