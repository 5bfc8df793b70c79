// Package blob fetches message content bodies from object storage.
package blob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sony/gobreaker"

	"inbox/internal/observability"
	"inbox/internal/store"
)

type S3Getter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// ContentStore reads message content blobs stored as JSON at
// <messageID>.json. The circuit breaker fails page requests fast while the
// blob backend is down instead of hammering it once per message.
type ContentStore struct {
	Client  S3Getter
	Bucket  string
	Breaker *gobreaker.CircuitBreaker
}

func NewContentStore(client S3Getter, bucket string, breaker *gobreaker.CircuitBreaker) *ContentStore {
	return &ContentStore{Client: client, Bucket: bucket, Breaker: breaker}
}

func (c *ContentStore) GetContent(ctx context.Context, messageID string) (store.MessageContent, bool, error) {
	body, err := c.getObject(ctx, messageID+".json")
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			observability.BlobFetches.WithLabelValues("not_found").Inc()
			return store.MessageContent{}, false, nil
		}
		observability.BlobFetches.WithLabelValues("error").Inc()
		return store.MessageContent{}, false, err
	}

	var content store.MessageContent
	if err := json.Unmarshal(body, &content); err != nil {
		observability.BlobFetches.WithLabelValues("error").Inc()
		return store.MessageContent{}, false, fmt.Errorf("decode content blob %s: %w", messageID, err)
	}
	observability.BlobFetches.WithLabelValues("ok").Inc()
	return content, true, nil
}

func (c *ContentStore) getObject(ctx context.Context, key string) ([]byte, error) {
	call := func() (any, error) {
		out, err := c.Client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(c.Bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return nil, err
		}
		defer out.Body.Close()
		return io.ReadAll(out.Body)
	}

	var res any
	var err error
	if c.Breaker != nil {
		res, err = c.Breaker.Execute(call)
	} else {
		res, err = call()
	}
	if err != nil {
		return nil, err
	}
	return res.([]byte), nil
}
