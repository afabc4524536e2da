package knowledge

import (
	"context"

	"github.com/rishicds/orinai-sub000/core"
)

// StaticSource serves canned per-bucket content. It is the deterministic
// default source: no network, never errors, stable output per bucket.
type StaticSource struct{}

// NewStatic creates the canned source.
func NewStatic() *StaticSource {
	return &StaticSource{}
}

// Lookup returns the bucket's canned chunks and citations.
func (s *StaticSource) Lookup(ctx context.Context, query string) (*Result, error) {
	bucket := SniffTopic(query)
	result, ok := bucketContent[bucket]
	if !ok {
		result = bucketContent[BucketGeneric]
	}
	// Copy so callers can append without mutating the tables.
	out := &Result{
		Chunks:    append([]core.Chunk(nil), result.Chunks...),
		Citations: append([]core.Citation(nil), result.Citations...),
	}
	return out, nil
}

var bucketContent = map[Bucket]Result{
	BucketFinancial: {
		Chunks: []core.Chunk{
			{
				Text: "Market Overview:\n" +
					"Global equity markets track earnings cycles, rate policy, and sector rotation. " +
					"Concentration in large-cap technology names has grown over the past decade.\n" +
					"- Index funds hold a rising share of total market capitalization\n" +
					"- Dividend yield and buybacks remain the main shareholder-return channels\n" +
					"- Volatility clusters around earnings seasons and policy announcements",
				Source:    "External Knowledge",
				Relevance: 0.6,
			},
			{
				Text: "Key Financial Indicators:\n" +
					"Revenue growth, operating margin, and free cash flow are the core health measures " +
					"analysts compare across companies and quarters.",
				Source:    "External Knowledge",
				Relevance: 0.5,
			},
		},
		Citations: []core.Citation{
			{Title: "Market structure primer", URL: "https://example.com/knowledge/markets", Snippet: "How index composition and sector weights shape returns."},
		},
	},
	BucketClimate: {
		Chunks: []core.Chunk{
			{
				Text: "Climate Trends:\n" +
					"Global mean surface temperature has risen roughly 1.2C above the pre-industrial " +
					"baseline, with the last decade containing the warmest years on record.\n" +
					"- Energy production remains the largest emission source\n" +
					"- Renewable capacity additions now outpace fossil additions annually\n" +
					"- Regional warming varies widely, with polar amplification strongest",
				Source:    "External Knowledge",
				Relevance: 0.6,
			},
			{
				Text: "Emissions Accounting:\n" +
					"Scope 1-3 categories separate direct operations, purchased energy, and supply-chain " +
					"emissions when organizations report their footprint.",
				Source:    "External Knowledge",
				Relevance: 0.5,
			},
		},
		Citations: []core.Citation{
			{Title: "Temperature record overview", URL: "https://example.com/knowledge/climate", Snippet: "Observed warming and its measurement baselines."},
		},
	},
	BucketTechnology: {
		Chunks: []core.Chunk{
			{
				Text: "Technology Landscape:\n" +
					"The smartphone market has consolidated around a handful of global brands, while " +
					"cloud platforms and AI accelerators drive current infrastructure spending.\n" +
					"- Mobile devices account for the majority of global internet traffic\n" +
					"- Annual device replacement cycles are lengthening\n" +
					"- Platform ecosystems lock in users through services and app catalogs",
				Source:    "External Knowledge",
				Relevance: 0.6,
			},
			{
				Text: "Adoption Curves:\n" +
					"New consumer technologies typically follow an S-curve: slow early adoption, rapid " +
					"mainstream uptake, then saturation and replacement-driven demand.",
				Source:    "External Knowledge",
				Relevance: 0.5,
			},
		},
		Citations: []core.Citation{
			{Title: "Device market survey", URL: "https://example.com/knowledge/technology", Snippet: "Brand share and shipment trends in consumer devices."},
		},
	},
	BucketGeneric: {
		Chunks: []core.Chunk{
			{
				Text: "Background:\n" +
					"No domain-specific source matched this query. General context: structure the answer " +
					"around what is asked, cite assumptions, and prefer concrete figures when available.",
				Source:    "External Knowledge",
				Relevance: 0.4,
			},
		},
		Citations: nil,
	},
}
