package storage

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/kerlexov/errorlog/pkg/apperror"
)

// SearchableRecord represents an error record optimized for search indexing
type SearchableRecord struct {
	Code         string    `json:"code"`
	Message      string    `json:"message"`
	UserMessage  string    `json:"user_message"`
	Severity     string    `json:"severity"`
	Component    string    `json:"component"`
	Category     string    `json:"category"`
	Timestamp    time.Time `json:"timestamp"`
	SuggestedFix string    `json:"suggested_fix,omitempty"`
	StackTrace   string    `json:"stack_trace,omitempty"`
}

// SearchService provides full-text search capabilities for error records
type SearchService struct {
	index bleve.Index
}

// NewSearchService creates a new search service with a Bleve index at the
// given path, opening the index if it already exists
func NewSearchService(indexPath string) (*SearchService, error) {
	var index bleve.Index
	var err error

	if _, statErr := os.Stat(indexPath); os.IsNotExist(statErr) {
		mapping := buildIndexMapping()
		index, err = bleve.New(indexPath, mapping)
		if err != nil {
			return nil, fmt.Errorf("failed to create search index: %w", err)
		}
	} else {
		index, err = bleve.Open(indexPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open search index: %w", err)
		}
	}

	return &SearchService{index: index}, nil
}

// buildIndexMapping creates the Bleve index mapping for error records
func buildIndexMapping() mapping.IndexMapping {
	recordMapping := bleve.NewDocumentMapping()

	// Code field - keyword (exact match)
	codeFieldMapping := bleve.NewTextFieldMapping()
	codeFieldMapping.Analyzer = "keyword"
	recordMapping.AddFieldMappingsAt("code", codeFieldMapping)

	// Message fields - full text search
	messageFieldMapping := bleve.NewTextFieldMapping()
	messageFieldMapping.Analyzer = "standard"
	recordMapping.AddFieldMappingsAt("message", messageFieldMapping)

	userMessageFieldMapping := bleve.NewTextFieldMapping()
	userMessageFieldMapping.Analyzer = "standard"
	recordMapping.AddFieldMappingsAt("user_message", userMessageFieldMapping)

	suggestedFixFieldMapping := bleve.NewTextFieldMapping()
	suggestedFixFieldMapping.Analyzer = "standard"
	recordMapping.AddFieldMappingsAt("suggested_fix", suggestedFixFieldMapping)

	stackTraceFieldMapping := bleve.NewTextFieldMapping()
	stackTraceFieldMapping.Analyzer = "standard"
	recordMapping.AddFieldMappingsAt("stack_trace", stackTraceFieldMapping)

	// Classification fields - keyword (exact match)
	severityFieldMapping := bleve.NewTextFieldMapping()
	severityFieldMapping.Analyzer = "keyword"
	recordMapping.AddFieldMappingsAt("severity", severityFieldMapping)

	componentFieldMapping := bleve.NewTextFieldMapping()
	componentFieldMapping.Analyzer = "keyword"
	recordMapping.AddFieldMappingsAt("component", componentFieldMapping)

	categoryFieldMapping := bleve.NewTextFieldMapping()
	categoryFieldMapping.Analyzer = "keyword"
	recordMapping.AddFieldMappingsAt("category", categoryFieldMapping)

	// Timestamp field - datetime
	timestampFieldMapping := bleve.NewDateTimeFieldMapping()
	recordMapping.AddFieldMappingsAt("timestamp", timestampFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("error", recordMapping)
	indexMapping.DefaultMapping = recordMapping

	return indexMapping
}

// Index adds or updates an error record in the search index. The document
// key combines code and timestamp because tracking codes are only
// probabilistically unique.
func (s *SearchService) Index(record apperror.Record) error {
	searchable := convertToSearchable(record)
	docID := fmt.Sprintf("%s@%d", record.Code, record.Timestamp.UnixNano())
	return s.index.Index(docID, searchable)
}

// Search performs a full-text search and returns the matching tracking
// codes, newest first
func (s *SearchService) Search(ctx context.Context, queryText string, filter ErrorFilter) ([]string, error) {
	searchQuery := buildSearchQuery(queryText, filter)

	searchRequest := bleve.NewSearchRequest(searchQuery)
	searchRequest.Size = filter.Limit
	if filter.Limit <= 0 {
		searchRequest.Size = 100
	}
	searchRequest.From = filter.Offset
	if filter.Offset < 0 {
		searchRequest.From = 0
	}
	searchRequest.Fields = []string{"code"}
	searchRequest.SortBy([]string{"-timestamp"})

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	var codes []string
	seen := make(map[string]bool)
	for _, hit := range searchResult.Hits {
		code, ok := hit.Fields["code"].(string)
		if !ok || seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}

	return codes, nil
}

// buildSearchQuery constructs a Bleve query based on search text and filters
func buildSearchQuery(queryText string, filter ErrorFilter) query.Query {
	var queries []query.Query

	if queryText != "" {
		messageQuery := bleve.NewMatchQuery(queryText)
		messageQuery.SetField("message")

		userMessageQuery := bleve.NewMatchQuery(queryText)
		userMessageQuery.SetField("user_message")

		fixQuery := bleve.NewMatchQuery(queryText)
		fixQuery.SetField("suggested_fix")

		textQuery := bleve.NewDisjunctionQuery(messageQuery, userMessageQuery, fixQuery)
		queries = append(queries, textQuery)
	}

	if filter.Component != "" {
		componentQuery := bleve.NewTermQuery(filter.Component)
		componentQuery.SetField("component")
		queries = append(queries, componentQuery)
	}

	if filter.Severity != "" {
		severityQuery := bleve.NewTermQuery(filter.Severity)
		severityQuery.SetField("severity")
		queries = append(queries, severityQuery)
	}

	if filter.Category != "" {
		categoryQuery := bleve.NewTermQuery(filter.Category)
		categoryQuery.SetField("category")
		queries = append(queries, categoryQuery)
	}

	if !filter.StartTime.IsZero() || !filter.EndTime.IsZero() {
		start := filter.StartTime
		end := filter.EndTime
		if start.IsZero() {
			start = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
		}
		if end.IsZero() {
			end = time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)
		}
		timeQuery := bleve.NewDateRangeQuery(start, end)
		timeQuery.SetField("timestamp")
		queries = append(queries, timeQuery)
	}

	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}

// convertToSearchable flattens a record for indexing
func convertToSearchable(record apperror.Record) SearchableRecord {
	searchable := SearchableRecord{
		Code:        record.Code,
		Message:     record.Message,
		UserMessage: record.UserMessage,
		Severity:    record.Severity,
		Component:   record.Component,
		Category:    record.Category,
		Timestamp:   record.Timestamp,
	}
	if record.SuggestedFix != nil {
		searchable.SuggestedFix = *record.SuggestedFix
	}
	if record.StackTrace != nil {
		searchable.StackTrace = *record.StackTrace
	}
	return searchable
}

// Close closes the search index
func (s *SearchService) Close() error {
	return s.index.Close()
}
