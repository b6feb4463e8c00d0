// Package blob uploads post images to object storage.
//
// Upload is two steps against a Store: write the bytes under a fresh key,
// then resolve a retrievable URL for that key. The steps fail separately:
// *StorageWriteError means nothing usable was stored, while
// *StorageURLResolutionError means the object exists but has no URL yet.
//
// Keys follow the layout the mobile app has always used:
//
//	posts/<uuid>.jpg
//
// Stores:
//   - GCSStore: a Firebase Cloud Storage bucket, with Firebase download-token
//     URLs
//   - SQLiteStore: the local backend, served by the HTTP gateway
package blob
