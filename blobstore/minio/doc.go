// Package minio implements blobstore.BlobStore on MinIO and other
// S3-compatible object stores through github.com/minio/minio-go/v7.
//
//	client, _ := minio.New("localhost:9000", &minio.Options{
//	    Creds: credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	})
//	snapshots := drumminio.NewStore(client, "drum", "crawler/")
package minio
