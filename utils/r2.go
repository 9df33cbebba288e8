// utils/r2.go
package utils

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gosimple/slug"

	"waitlist-rank-system/models"
)

// R2Archive uploads snapshot exports to a Cloudflare R2 (S3-compatible) bucket.
type R2Archive struct {
	client *s3.Client
	bucket string
}

func NewR2Archive(ctx context.Context, accountID, accessKeyID, accessKeySecret, bucket string) (*R2Archive, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion("auto"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKeyID, accessKeySecret, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load R2 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID))
	})
	return &R2Archive{client: client, bucket: bucket}, nil
}

// Archive writes the ranked entrants of run as CSV and returns the object key.
func (a *R2Archive) Archive(ctx context.Context, run *models.SnapshotRun, ranked []models.Entrant) (string, error) {
	buf := new(bytes.Buffer)
	if err := WriteSnapshotCSV(buf, ranked); err != nil {
		return "", err
	}

	key := ArchiveKey(run)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to R2: %w", err)
	}
	return key, nil
}

// ArchiveKey is snapshots/<yyyy>/<mm>/<dd>/<hhmmss>-<label slug>.csv, in UTC.
func ArchiveKey(run *models.SnapshotRun) string {
	label := slug.Make(run.Label)
	if label == "" {
		label = "snapshot"
	}
	at := run.TakenAt.UTC()
	return fmt.Sprintf("snapshots/%s/%s-%s.csv", at.Format("2006/01/02"), at.Format("150405"), label)
}

var snapshotCSVHeader = []string{
	"rank", "email", "name", "total_score", "referral_count", "contribution_points",
	"engagement_points", "early_commitment_bonus", "code_development_points",
	"free_access_months", "discount_percentage", "voting_weight", "status",
}

// WriteSnapshotCSV writes one row per ranked entrant, in the given order.
func WriteSnapshotCSV(w io.Writer, ranked []models.Entrant) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(snapshotCSVHeader); err != nil {
		return err
	}
	for i := range ranked {
		e := &ranked[i]
		rank := ""
		if e.SnapshotRank != nil {
			rank = strconv.Itoa(*e.SnapshotRank)
		}
		name := ""
		if e.Name != nil {
			name = *e.Name
		}
		row := []string{
			rank, e.Email, name,
			strconv.Itoa(e.TotalScore),
			strconv.Itoa(e.ReferralCount),
			strconv.Itoa(e.ContributionPoints),
			strconv.Itoa(e.EngagementPoints),
			strconv.Itoa(e.EarlyCommitmentBonus),
			strconv.Itoa(e.CodeDevelopmentPoints),
			strconv.Itoa(e.FreeAccessMonths),
			strconv.Itoa(e.DiscountPercentage),
			strconv.Itoa(e.VotingWeight),
			string(e.Status),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
