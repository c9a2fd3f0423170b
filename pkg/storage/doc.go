// Package storage provides file management for downloaded images.
//
// The storage package handles:
//   - Creating and managing the download directory
//   - Saving images with atomic write operations
//   - Detecting submissions downloaded on earlier runs
//   - Thread-safe file operations
//
// The Manager type is the primary interface for storage operations. On
// startup it indexes the files already present in the download
// directory; a submission is considered downloaded when any file carries
// its filename prefix, so re-runs skip work they have already done.
//
// Files are written to a temporary name and renamed into place, so a
// crash mid-download never leaves a partial image that would count as a
// completed submission.
//
// Usage:
//
//	manager, err := storage.NewManager("download_directory")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if !manager.HasSubmission("earthporn", "abc12") {
//	    err = manager.SaveImage(imageReader, "reddit_earthporn_abc12_00_view.jpg")
//	    if err != nil {
//	        log.Printf("Failed to save image: %v", err)
//	    }
//	}
package storage
