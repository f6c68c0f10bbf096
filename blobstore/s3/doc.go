// Package s3 implements blobstore.BlobStore on Amazon S3 with
// github.com/aws/aws-sdk-go-v2.
//
// Uploads go through the SDK's transfer manager so large snapshots are
// split into multipart uploads automatically. Use NewFromConfig to build a
// store from the default AWS credential chain, or NewStore to plug in a
// preconfigured client.
package s3
