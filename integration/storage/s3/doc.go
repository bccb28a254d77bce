// Package s3 serves capsule assets from Amazon S3 and S3-compatible storage.
//
// Source implements static.Source using the AWS S3 SDK v2, so File
// responses can come from a bucket instead of a local directory:
//
//	src, err := s3.New(ctx, s3.Config{
//		Bucket: "my-capsule",
//		Region: "us-east-1",
//		Prefix: "public",
//	})
//	if err != nil {
//		return err
//	}
//	app := fluffer.New(state, fluffer.WithStatic(src))
//
// # S3-Compatible Services
//
// MinIO configuration:
//
//	cfg := s3.Config{
//		Bucket:         "capsule",
//		Region:         "us-east-1",
//		AccessKeyID:    "minioadmin",
//		SecretKey:      "minioadmin",
//		Endpoint:       "http://localhost:9000",
//		ForcePathStyle: true,
//	}
//
// # Errors
//
// Missing objects, buckets and denied reads are reported as
// static.ErrNotFound. Transport and body failures are static.ErrRead. An
// object whose type cannot be determined is static.ErrUnknownMIME.
package s3
