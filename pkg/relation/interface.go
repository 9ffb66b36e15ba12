package relation

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

//go:generate mockgen -package mockrelation -source=interface.go -destination=mock/mockrelation.go *

// ObjectStat is the subset of the S3 API used to read object metadata.
type ObjectStat interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}
