// Package cli provides the interactive Beiwe device client.
//
// It drives the device transport from a terminal: register the device with
// a study server, upload queued data files, send notification requests and
// inspect the local message and diagnostic logs. A background ticker runs
// upload batches on an interval while the REPL is open; batches started by
// the ticker and by the upload command are serialized by the uploader.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartUploadScheduler and runREPL for details.
package cli
