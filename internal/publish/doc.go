// Package publish turns a photo and a few fields into a published post.
//
// Publish runs a fixed sequence and stops at the first failure:
//
//  1. validate the username, fish type and image, in that order
//  2. resolve the location: image geotag, then device location
//  3. upload the image
//  4. write the post document
//
// Every failure comes back as a *PublishError naming the step, wrapping the
// typed cause (*ValidationError, *LocationUnresolvedError, a blob storage
// error or a *docstore.WriteError). When the document write fails after the
// upload succeeded, OrphanedBlob names the stored image; nothing removes it.
//
// The returned post is not pushed into any feed. Feeds pick it up through
// their subscription like any other write.
package publish
