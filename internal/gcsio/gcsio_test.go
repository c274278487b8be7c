package gcsio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURI(t *testing.T) {
	bucket, object, err := ParseURI("gs://my-bucket/raw/customers.csv")
	require.NoError(t, err)
	assert.Equal(t, "my-bucket", bucket)
	assert.Equal(t, "raw/customers.csv", object)
}

func TestParseURIRejectsMalformed(t *testing.T) {
	tests := []string{
		"s3://my-bucket/object",
		"data/customers.csv",
		"gs://bucket-only",
		"gs://bucket/",
	}
	for _, uri := range tests {
		_, _, err := ParseURI(uri)
		assert.Error(t, err, uri)
	}
}
