// Package minio writes JSON documents to MinIO or any S3-compatible store.
//
// Its main use is SnapshotWriter, which copies a namespace's records out
// before a migration rewrites them. Snapshots land at
// <prefix>/<namespace>/<timestamp>.json in the configured bucket.
package minio
