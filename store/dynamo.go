package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"github.com/mahmut0ff/lokal"
	"github.com/mahmut0ff/lokal/cache"
)

// Default secondary index names.
const (
	DefaultLocaleIndex   = "locale-category-index"
	DefaultCategoryIndex = "category-key-index"
)

// DefaultSearchLimit caps full-scan search results when no limit is given.
const DefaultSearchLimit = 50

// maxBatchAttempts bounds the re-drive loop for unprocessed batch items.
const maxBatchAttempts = 3

// DynamoAPI is the subset of the DynamoDB client the adapter uses.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	BatchGetItem(ctx context.Context, params *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoConfig holds configuration for the DynamoDB adapter.
type DynamoConfig struct {
	Client        DynamoAPI
	Table         string
	LocaleIndex   string             // GSI keyed (locale, category#key)
	CategoryIndex string             // GSI keyed (category, key)
	Limits        Limits             // Batch ceilings (default: 25 writes / 100 gets)
	Logger        *zap.Logger        // Default: no-op
	WriteLimiter  *lokal.RateLimiter // Optional pacing between write chunks
}

// DynamoStore translates domain operations into DynamoDB primitives.
//
// Error policy follows the engine's asymmetry: read methods catch store
// failures, log them, and degrade to empty results; write methods wrap
// failures in *lokal.StoreError and propagate them.
type DynamoStore struct {
	client        DynamoAPI
	table         string
	localeIndex   string
	categoryIndex string
	limits        Limits
	logger        *zap.Logger
	writeLimiter  *lokal.RateLimiter
	now           func() time.Time
}

// NewDynamoStore creates a DynamoDB-backed translation store.
func NewDynamoStore(cfg DynamoConfig) (*DynamoStore, error) {
	if cfg.Client == nil {
		return nil, errors.New("store: client is required")
	}
	if cfg.Table == "" {
		return nil, errors.New("store: table name is required")
	}

	localeIndex := cfg.LocaleIndex
	if localeIndex == "" {
		localeIndex = DefaultLocaleIndex
	}
	categoryIndex := cfg.CategoryIndex
	if categoryIndex == "" {
		categoryIndex = DefaultCategoryIndex
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &DynamoStore{
		client:        cfg.Client,
		table:         cfg.Table,
		localeIndex:   localeIndex,
		categoryIndex: categoryIndex,
		limits:        cfg.Limits.normalized(),
		logger:        logger,
		writeLimiter:  cfg.WriteLimiter,
		now:           time.Now,
	}, nil
}

// item type discriminators for the single-table layout.
const (
	itemTypeTranslation = "TRANSLATION"
	itemTypeSnapshot    = "CACHE"
)

// translationItem is the table representation of a Translation.
type translationItem struct {
	PK          string             `dynamodbav:"PK"`
	SK          string             `dynamodbav:"SK"`
	ItemType    string             `dynamodbav:"ItemType"`
	GSI1PK      string             `dynamodbav:"GSI1PK"` // locale
	GSI1SK      string             `dynamodbav:"GSI1SK"` // category#key
	GSI2PK      string             `dynamodbav:"GSI2PK"` // category
	GSI2SK      string             `dynamodbav:"GSI2SK"` // key
	ID          string             `dynamodbav:"ID"`
	Key         string             `dynamodbav:"TranslationKey"`
	Locale      string             `dynamodbav:"Locale"`
	Value       string             `dynamodbav:"Value"`
	Category    string             `dynamodbav:"Category"`
	Description string             `dynamodbav:"Description,omitempty"`
	Variables   []string           `dynamodbav:"Variables,omitempty"`
	PluralForms *lokal.PluralForms `dynamodbav:"PluralForms,omitempty"`
	CreatedAt   string             `dynamodbav:"CreatedAt"`
	UpdatedAt   string             `dynamodbav:"UpdatedAt"`
}

// snapshotItem is the table representation of a persisted cache snapshot.
type snapshotItem struct {
	PK          string            `dynamodbav:"PK"`
	SK          string            `dynamodbav:"SK"`
	ItemType    string            `dynamodbav:"ItemType"`
	Locale      string            `dynamodbav:"Locale"`
	Category    string            `dynamodbav:"Category,omitempty"`
	Values      map[string]string `dynamodbav:"Values"`
	LastUpdated string            `dynamodbav:"LastUpdated"`
	TTLSeconds  int64             `dynamodbav:"TTLSeconds"`
	ExpiresAt   int64             `dynamodbav:"ExpiresAt"` // Store-native TTL attribute
}

// toItem converts a Translation, stamping timestamps server-side.
func (s *DynamoStore) toItem(t lokal.Translation) translationItem {
	now := s.now().UTC()
	created := t.CreatedAt
	if created.IsZero() {
		created = now
	}
	return translationItem{
		PK:          TranslationPK(t.Key),
		SK:          TranslationSK(t.Locale),
		ItemType:    itemTypeTranslation,
		GSI1PK:      t.Locale,
		GSI1SK:      CategoryKey(t.Category, t.Key),
		GSI2PK:      t.Category,
		GSI2SK:      t.Key,
		ID:          t.ID,
		Key:         t.Key,
		Locale:      t.Locale,
		Value:       t.Value,
		Category:    t.Category,
		Description: t.Description,
		Variables:   t.Variables,
		PluralForms: t.PluralForms,
		CreatedAt:   created.Format(time.RFC3339Nano),
		UpdatedAt:   now.Format(time.RFC3339Nano),
	}
}

// fromItem converts a table row back to the domain record.
func fromItem(it translationItem) lokal.Translation {
	created, _ := time.Parse(time.RFC3339Nano, it.CreatedAt)
	updated, _ := time.Parse(time.RFC3339Nano, it.UpdatedAt)
	return lokal.Translation{
		ID:          it.ID,
		Key:         it.Key,
		Locale:      it.Locale,
		Value:       it.Value,
		Category:    it.Category,
		Description: it.Description,
		Variables:   it.Variables,
		PluralForms: it.PluralForms,
		CreatedAt:   created,
		UpdatedAt:   updated,
	}
}

// translationKey builds the composite primary key attribute map.
func translationKey(key, locale string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: TranslationPK(key)},
		"SK": &types.AttributeValueMemberS{Value: TranslationSK(locale)},
	}
}

// Get fetches a single translation. Read path: failures degrade to a
// miss and are logged.
func (s *DynamoStore) Get(ctx context.Context, key, locale string) (*lokal.Translation, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       translationKey(key, locale),
	})
	if err != nil {
		s.logger.Warn("get item failed",
			zap.String("key", key),
			zap.String("locale", locale),
			zap.Error(err))
		return nil, nil
	}
	if out.Item == nil {
		return nil, nil
	}

	var it translationItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		s.logger.Warn("unmarshal item failed",
			zap.String("key", key),
			zap.Error(err))
		return nil, nil
	}
	t := fromItem(it)
	return &t, nil
}

// GetMany fetches translations in chunks of at most the batch-get limit.
// Read path: a failed chunk is logged and its keys omitted from the
// result, so a transient outage degrades to a partial map, never an
// error.
func (s *DynamoStore) GetMany(ctx context.Context, keys []string, locale string) (map[string]lokal.Translation, error) {
	found := make(map[string]lokal.Translation, len(keys))

	for _, part := range chunk(keys, s.limits.BatchGetMax) {
		requests := make([]map[string]types.AttributeValue, 0, len(part))
		for _, key := range part {
			requests = append(requests, translationKey(key, locale))
		}

		if err := s.batchGet(ctx, requests, found); err != nil {
			s.logger.Warn("batch get chunk failed, omitting keys",
				zap.String("locale", locale),
				zap.Int("keys", len(part)),
				zap.Error(err))
		}
	}

	return found, nil
}

// batchGet issues one chunk, re-driving unprocessed keys a bounded
// number of times.
func (s *DynamoStore) batchGet(ctx context.Context, requests []map[string]types.AttributeValue, found map[string]lokal.Translation) error {
	for attempt := 0; len(requests) > 0 && attempt < maxBatchAttempts; attempt++ {
		out, err := s.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
			RequestItems: map[string]types.KeysAndAttributes{
				s.table: {Keys: requests},
			},
		})
		if err != nil {
			return err
		}

		for _, raw := range out.Responses[s.table] {
			var it translationItem
			if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
				s.logger.Warn("unmarshal batch item failed", zap.Error(err))
				continue
			}
			found[it.Key] = fromItem(it)
		}

		requests = out.UnprocessedKeys[s.table].Keys
	}

	if len(requests) > 0 {
		return fmt.Errorf("%d keys unprocessed after %d attempts", len(requests), maxBatchAttempts)
	}
	return nil
}

// Put upserts a single translation, refreshing UpdatedAt server-side.
// Write path: failures propagate.
func (s *DynamoStore) Put(ctx context.Context, t lokal.Translation) (lokal.Translation, error) {
	it := s.toItem(t)
	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return lokal.Translation{}, &lokal.StoreError{Op: "put", Message: "marshal item", Cause: err}
	}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	}); err != nil {
		return lokal.Translation{}, &lokal.StoreError{
			Op:        "put",
			Message:   fmt.Sprintf("put %s/%s", t.Key, t.Locale),
			Cause:     err,
			Retryable: isThrottled(err),
		}
	}

	return fromItem(it), nil
}

// PutMany writes translations in chunks of at most the batch-write
// limit, pacing chunks through the write limiter when one is configured.
// Write path: the first failed chunk aborts the remainder; the returned
// count reflects what landed.
func (s *DynamoStore) PutMany(ctx context.Context, ts []lokal.Translation) (int, error) {
	written := 0

	for _, part := range chunk(ts, s.limits.BatchWriteMax) {
		if s.writeLimiter != nil {
			if err := s.writeLimiter.Wait(ctx); err != nil {
				return written, &lokal.StoreError{Op: "put_many", Message: "rate limit wait cancelled", Cause: err}
			}
		}

		requests := make([]types.WriteRequest, 0, len(part))
		for _, t := range part {
			av, err := attributevalue.MarshalMap(s.toItem(t))
			if err != nil {
				return written, &lokal.StoreError{Op: "put_many", Message: "marshal item", Cause: err}
			}
			requests = append(requests, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: av},
			})
		}

		if err := s.batchWrite(ctx, requests); err != nil {
			return written, &lokal.StoreError{
				Op:        "put_many",
				Message:   fmt.Sprintf("batch of %d items", len(part)),
				Cause:     err,
				Retryable: isThrottled(err),
			}
		}
		written += len(part)
	}

	return written, nil
}

// batchWrite issues one chunk, re-driving unprocessed items a bounded
// number of times.
func (s *DynamoStore) batchWrite(ctx context.Context, requests []types.WriteRequest) error {
	for attempt := 0; len(requests) > 0 && attempt < maxBatchAttempts; attempt++ {
		out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				s.table: requests,
			},
		})
		if err != nil {
			return err
		}
		requests = out.UnprocessedItems[s.table]
	}

	if len(requests) > 0 {
		return fmt.Errorf("%d items unprocessed after %d attempts", len(requests), maxBatchAttempts)
	}
	return nil
}

// Delete removes a translation. Deleting an absent key succeeds.
// Write path: failures propagate.
func (s *DynamoStore) Delete(ctx context.Context, key, locale string) error {
	if _, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       translationKey(key, locale),
	}); err != nil {
		return &lokal.StoreError{
			Op:        "delete",
			Message:   fmt.Sprintf("delete %s/%s", key, locale),
			Cause:     err,
			Retryable: isThrottled(err),
		}
	}
	return nil
}

// QueryByLocale returns a locale's translations ordered by category then
// key, via the locale index. Read path: failures degrade to empty.
func (s *DynamoStore) QueryByLocale(ctx context.Context, locale, category string) ([]lokal.Translation, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		IndexName:              aws.String(s.localeIndex),
		KeyConditionExpression: aws.String("GSI1PK = :locale"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":locale": &types.AttributeValueMemberS{Value: locale},
		},
	}
	if category != "" {
		input.KeyConditionExpression = aws.String("GSI1PK = :locale AND begins_with(GSI1SK, :prefix)")
		input.ExpressionAttributeValues[":prefix"] = &types.AttributeValueMemberS{Value: category + "#"}
	}

	return s.queryAll(ctx, input, "query_by_locale")
}

// QueryByCategory returns a category's translations via the category
// index, optionally filtered by locale, up to limit (0 = no limit).
// Read path: failures degrade to empty.
func (s *DynamoStore) QueryByCategory(ctx context.Context, category, locale string, limit int) ([]lokal.Translation, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		IndexName:              aws.String(s.categoryIndex),
		KeyConditionExpression: aws.String("GSI2PK = :category"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":category": &types.AttributeValueMemberS{Value: category},
		},
	}
	if locale != "" {
		input.FilterExpression = aws.String("#loc = :locale")
		input.ExpressionAttributeNames = map[string]string{"#loc": "Locale"}
		input.ExpressionAttributeValues[":locale"] = &types.AttributeValueMemberS{Value: locale}
	}

	ts, err := s.queryAll(ctx, input, "query_by_category")
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(ts) > limit {
		ts = ts[:limit]
	}
	return ts, nil
}

// queryAll drains a paginated query. Read path: failures degrade to
// whatever pages were already collected.
func (s *DynamoStore) queryAll(ctx context.Context, input *dynamodb.QueryInput, op string) ([]lokal.Translation, error) {
	var ts []lokal.Translation

	for {
		out, err := s.client.Query(ctx, input)
		if err != nil {
			s.logger.Warn("query failed",
				zap.String("op", op),
				zap.Error(err))
			return ts, nil
		}

		for _, raw := range out.Items {
			var it translationItem
			if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
				s.logger.Warn("unmarshal query item failed", zap.Error(err))
				continue
			}
			ts = append(ts, fromItem(it))
		}

		if out.LastEvaluatedKey == nil {
			return ts, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

// Search performs a full-table scan with a case-normalized substring
// match against keys and values. Explicitly the slow path; never used by
// resolution. Read path: failures degrade to empty.
func (s *DynamoStore) Search(ctx context.Context, query, locale, category string, limit int) ([]lokal.Translation, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	needle := strings.ToLower(query)

	var matches []lokal.Translation
	for _, t := range s.scanTranslations(ctx) {
		if locale != "" && t.Locale != locale {
			continue
		}
		if category != "" && t.Category != category {
			continue
		}
		if !strings.Contains(strings.ToLower(t.Key), needle) &&
			!strings.Contains(strings.ToLower(t.Value), needle) {
			continue
		}
		matches = append(matches, t)
		if len(matches) >= limit {
			break
		}
	}
	return matches, nil
}

// ScanAll returns every stored translation. Intended for periodic or
// administrative use only. Read path: failures degrade to empty.
func (s *DynamoStore) ScanAll(ctx context.Context) ([]lokal.Translation, error) {
	return s.scanTranslations(ctx), nil
}

// scanTranslations drains a full scan of translation rows, excluding
// snapshot rows.
func (s *DynamoStore) scanTranslations(ctx context.Context) []lokal.Translation {
	input := &dynamodb.ScanInput{
		TableName:        aws.String(s.table),
		FilterExpression: aws.String("ItemType = :t"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberS{Value: itemTypeTranslation},
		},
	}

	var ts []lokal.Translation
	for {
		out, err := s.client.Scan(ctx, input)
		if err != nil {
			s.logger.Warn("scan failed", zap.Error(err))
			return ts
		}

		for _, raw := range out.Items {
			var it translationItem
			if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
				s.logger.Warn("unmarshal scan item failed", zap.Error(err))
				continue
			}
			ts = append(ts, fromItem(it))
		}

		if out.LastEvaluatedKey == nil {
			return ts
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

// LoadSnapshot returns the persisted cache snapshot for a locale, or
// (nil, nil) when none exists.
func (s *DynamoStore) LoadSnapshot(ctx context.Context, locale, category string) (*cache.Snapshot, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: SnapshotPK(locale)},
			"SK": &types.AttributeValueMemberS{Value: SnapshotSK(category)},
		},
	})
	if err != nil {
		return nil, &lokal.SnapshotError{Locale: locale, Message: "load snapshot", Cause: err}
	}
	if out.Item == nil {
		return nil, nil
	}

	var it snapshotItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, &lokal.SnapshotError{Locale: locale, Message: "unmarshal snapshot", Cause: err}
	}

	lastUpdated, _ := time.Parse(time.RFC3339Nano, it.LastUpdated)
	return &cache.Snapshot{
		Locale:      it.Locale,
		Category:    it.Category,
		Values:      it.Values,
		LastUpdated: lastUpdated,
		TTL:         time.Duration(it.TTLSeconds) * time.Second,
	}, nil
}

// SaveSnapshot writes a locale's snapshot row with a store-native expiry
// derived from its TTL.
func (s *DynamoStore) SaveSnapshot(ctx context.Context, snap cache.Snapshot) error {
	it := snapshotItem{
		PK:          SnapshotPK(snap.Locale),
		SK:          SnapshotSK(snap.Category),
		ItemType:    itemTypeSnapshot,
		Locale:      snap.Locale,
		Category:    snap.Category,
		Values:      snap.Values,
		LastUpdated: snap.LastUpdated.UTC().Format(time.RFC3339Nano),
		TTLSeconds:  int64(snap.TTL.Seconds()),
		ExpiresAt:   snap.LastUpdated.Add(snap.TTL).Unix(),
	}

	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return &lokal.SnapshotError{Locale: snap.Locale, Message: "marshal snapshot", Cause: err}
	}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	}); err != nil {
		return &lokal.SnapshotError{Locale: snap.Locale, Message: "save snapshot", Cause: err}
	}
	return nil
}

// DeleteSnapshots removes every snapshot row for the locale.
func (s *DynamoStore) DeleteSnapshots(ctx context.Context, locale string) error {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: SnapshotPK(locale)},
		},
		ProjectionExpression: aws.String("PK, SK"),
	}

	for {
		out, err := s.client.Query(ctx, input)
		if err != nil {
			return &lokal.SnapshotError{Locale: locale, Message: "query snapshots", Cause: err}
		}

		for _, raw := range out.Items {
			if _, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
				TableName: aws.String(s.table),
				Key: map[string]types.AttributeValue{
					"PK": raw["PK"],
					"SK": raw["SK"],
				},
			}); err != nil {
				return &lokal.SnapshotError{Locale: locale, Message: "delete snapshot", Cause: err}
			}
		}

		if out.LastEvaluatedKey == nil {
			return nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

// isThrottled reports whether an error is a transient capacity or
// availability failure worth retrying.
func isThrottled(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "ProvisionedThroughputExceededException",
		"ThrottlingException",
		"RequestLimitExceeded",
		"InternalServerError":
		return true
	}
	return false
}

// Verify DynamoStore implements both contracts
var (
	_ lokal.Store         = (*DynamoStore)(nil)
	_ cache.SnapshotStore = (*DynamoStore)(nil)
)
