package services

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewStorageService tests the constructor
func TestNewStorageService(t *testing.T) {
	tests := []struct {
		name     string
		bucket   string
		region   string
		endpoint string
		wantErr  bool
	}{
		{
			name:     "localstack configuration",
			bucket:   "vendlens-imports",
			region:   "us-east-1",
			endpoint: "http://localhost:4566",
		},
		{
			name:   "aws configuration",
			bucket: "vendlens-imports",
			region: "ap-southeast-1",
		},
		{
			name:     "empty bucket",
			region:   "us-east-1",
			endpoint: "http://localhost:4566",
			wantErr:  true,
		},
		{
			name:     "empty region",
			bucket:   "vendlens-imports",
			endpoint: "http://localhost:4566",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, err := NewStorageService(context.Background(), tt.bucket, tt.region, tt.endpoint)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, service)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, service.s3Client)
			assert.Equal(t, tt.bucket, service.bucket)
			assert.Equal(t, tt.region, service.region)
		})
	}
}

// TestGenerateUploadKey tests key layout and sanitizing
func TestGenerateUploadKey(t *testing.T) {
	service, err := NewStorageService(context.Background(), "vendlens-imports", "us-east-1", "http://localhost:4566")
	require.NoError(t, err)

	tests := []struct {
		name       string
		machine    string
		filename   string
		wantPrefix string
		wantSuffix string
		wantErr    bool
	}{
		{
			name:       "valid input",
			machine:    "VMCHERAS-5",
			filename:   "sales.xlsx",
			wantPrefix: "imports/VMCHERAS-5/",
			wantSuffix: "-sales.xlsx",
		},
		{
			name:       "no machine",
			filename:   "sales.csv",
			wantPrefix: "imports/all/",
			wantSuffix: "-sales.csv",
		},
		{
			name:       "special characters",
			machine:    "VMCHERAS-T4/iskandar",
			filename:   "Jan 2026 (final).XLSX",
			wantPrefix: "imports/VMCHERAS-T4-iskandar/",
			wantSuffix: "-Jan-2026--final-.xlsx",
		},
		{
			name:    "empty filename",
			machine: "VMCHERAS-5",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := service.GenerateUploadKey(tt.machine, tt.filename)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Empty(t, key)
				return
			}
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(key, tt.wantPrefix), key)
			assert.True(t, strings.HasSuffix(key, tt.wantSuffix), key)
			assert.NotContains(t, key, " ")
		})
	}
}

func TestGeneratePresignedURL_Validation(t *testing.T) {
	service, err := NewStorageService(context.Background(), "vendlens-imports", "us-east-1", "http://localhost:4566")
	require.NoError(t, err)
	ctx := context.Background()

	_, err = service.GeneratePresignedURL(ctx, "", "text/csv", time.Minute)
	assert.Error(t, err)

	_, err = service.GeneratePresignedURL(ctx, "imports/all/a.csv", "text/csv", 0)
	assert.Error(t, err)

	// Presigning is local; no request is sent
	url, err := service.GeneratePresignedURL(ctx, "imports/all/a.csv", "text/csv", 15*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, "imports/all/a.csv")
	assert.Contains(t, url, "X-Amz-Signature")
}

func TestStorageService_EmptyKey(t *testing.T) {
	service, err := NewStorageService(context.Background(), "vendlens-imports", "us-east-1", "http://localhost:4566")
	require.NoError(t, err)

	_, err = service.DownloadFile(context.Background(), "")
	assert.Error(t, err)
	assert.Error(t, service.DeleteFile(context.Background(), ""))
}

// TestStorageService_Integration runs against LocalStack when VENDLENS_S3_ENDPOINT is set
func TestStorageService_Integration(t *testing.T) {
	endpoint := os.Getenv("VENDLENS_S3_ENDPOINT")
	if endpoint == "" || testing.Short() {
		t.Skip("set VENDLENS_S3_ENDPOINT to run against LocalStack")
	}

	ctx := context.Background()
	service, err := NewStorageService(ctx, "vendlens-test", "us-east-1", endpoint)
	require.NoError(t, err)

	// Ignore error if bucket already exists
	_, _ = service.s3Client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(service.bucket)})

	key, err := service.GenerateUploadKey("HQ-Pantry", "sales.csv")
	require.NoError(t, err)

	content := "TransId,Product,Amount\nT1,Cola,2.50\n"
	require.NoError(t, service.Push(ctx, key, []byte(content)))

	reader, err := service.DownloadFile(ctx, key)
	require.NoError(t, err)
	got, err := io.ReadAll(reader)
	reader.Close()
	require.NoError(t, err)
	assert.Equal(t, content, string(got))

	data, ok, err := service.Pull(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, content, string(data))

	require.NoError(t, service.DeleteFile(ctx, key))

	_, ok, err = service.Pull(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}
