// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

package s3

import (
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/pkg/errors"
)

// Scheme prefixes manifest entries which live in S3.
const Scheme = "s3://"

// ResOption is a functional option for the Resolver.
type ResOption func(r *Resolver)

// OptResRegion sets the AWS region.
func OptResRegion(region string) ResOption {
	return func(r *Resolver) {
		r.region = region
	}
}

// OptResTempDir sets the directory objects are downloaded into. The default
// is the system temp directory.
func OptResTempDir(dir string) ResOption {
	return func(r *Resolver) {
		r.tempDir = dir
	}
}

// Resolver is a songgraph.Resolver which downloads s3://bucket/key entries to
// temporary files. Any other entry is returned unchanged as a local path.
type Resolver struct {
	region  string
	tempDir string

	sess       *session.Session
	downloader *s3manager.Downloader
}

// NewResolver gets a Resolver with a new AWS session.
func NewResolver(opts ...ResOption) (*Resolver, error) {
	r := &Resolver{}
	for _, opt := range opts {
		opt(r)
	}
	var err error
	r.sess, err = session.NewSession(&aws.Config{
		Region: aws.String(r.region)},
	)
	if err != nil {
		return nil, errors.Wrap(err, "getting new session")
	}
	r.downloader = s3manager.NewDownloader(r.sess)
	return r, nil
}

// Resolve implements songgraph.Resolver. The release func removes the
// downloaded file.
func (r *Resolver) Resolve(entry string) (string, func(), error) {
	bucket, key, ok := ParseURL(entry)
	if !ok {
		return entry, func() {}, nil
	}
	f, err := os.CreateTemp(r.tempDir, "songgraph-*"+path.Ext(key))
	if err != nil {
		return "", nil, errors.Wrap(err, "creating temp file")
	}
	release := func() { os.Remove(f.Name()) }
	_, err = r.downloader.Download(f, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	cerr := f.Close()
	if err != nil {
		release()
		return "", nil, errors.Wrapf(err, "fetching %v", key)
	}
	if cerr != nil {
		release()
		return "", nil, errors.Wrap(cerr, "closing temp file")
	}
	return f.Name(), release, nil
}

// ParseURL splits s3://bucket/key. ok is false if entry is not an S3 URL or
// has no key.
func ParseURL(entry string) (bucket, key string, ok bool) {
	if !strings.HasPrefix(entry, Scheme) {
		return "", "", false
	}
	rest := strings.TrimPrefix(entry, Scheme)
	i := strings.IndexByte(rest, '/')
	if i <= 0 || i == len(rest)-1 {
		return "", "", false
	}
	return rest[:i], rest[i+1:], true
}
