// Package gcs implements blob.Store on Google Cloud Storage.
package gcs
