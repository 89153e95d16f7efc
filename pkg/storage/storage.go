// Package storage implements the object-storage boundary. Uploaded media
// (videos, thumbnails, PDFs, gallery images) is stored before the database
// record is created; records hold only the returned URL.
package storage

// ObjectStorage persists binary assets and returns a public URL for each.
type ObjectStorage interface {
	// Upload stores the file content under the given name and returns the
	// URL to reference it by.
	Upload(name string, data []byte) (string, error)
	// Delete removes a stored asset. Missing assets are not an error.
	Delete(name string) error
}
