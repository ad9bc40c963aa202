package mcp

import "context"

// Tool names exposed to agent clients.
const (
	ToolLatestArticles     = "get_latest_articles"
	ToolSectionArticles    = "get_section_articles"
	ToolSearchArticles     = "search_articles"
	ToolAgentEconomyStats  = "get_agent_economy_stats"
	ToolWireFeed           = "get_wire_feed"
	ToolEditorialStandards = "get_editorial_standards"
)

const latestArticlesSchema = `{
  "type": "object",
  "properties": {
    "limit": {
      "type": "integer",
      "minimum": 1,
      "description": "Number of articles to return (default 20)"
    }
  },
  "additionalProperties": false
}`

const sectionArticlesSchema = `{
  "type": "object",
  "properties": {
    "section": {
      "type": "string",
      "enum": ["platforms", "commerce", "infrastructure", "regulations", "labor", "opinion"],
      "description": "Section name"
    },
    "limit": {
      "type": "integer",
      "minimum": 1,
      "description": "Number of articles to return (default 20)"
    }
  },
  "required": ["section"],
  "additionalProperties": false
}`

const searchArticlesSchema = `{
  "type": "object",
  "properties": {
    "query": {
      "type": "string",
      "description": "Search query (e.g., 'Moltbook', 'payments', 'OpenClaw', 'regulations')"
    },
    "limit": {
      "type": "integer",
      "minimum": 1,
      "description": "Max results (default 20)"
    }
  },
  "required": ["query"],
  "additionalProperties": false
}`

const economyStatsSchema = `{
  "type": "object",
  "properties": {},
  "additionalProperties": false
}`

const wireFeedSchema = `{
  "type": "object",
  "properties": {
    "since": {
      "type": "string",
      "format": "date-time",
      "description": "Only wire items strictly newer than this RFC 3339 timestamp"
    },
    "limit": {
      "type": "integer",
      "minimum": 1,
      "description": "Number of wire items (default 50)"
    }
  },
  "additionalProperties": false
}`

const editorialStandardsSchema = `{
  "type": "object",
  "properties": {},
  "additionalProperties": false
}`

// RegisterNewsTools registers the six retrieval tools on the catalog.
func RegisterNewsTools(ctx context.Context, catalog *ToolCatalog) error {
	tools := []ToolRef{
		{
			Name:        ToolLatestArticles,
			Description: "Get the latest articles from The Agent Times across all sections. Returns the most recent articles with headlines, summaries, sources, and confidence levels.",
			Schema:      latestArticlesSchema,
		},
		{
			Name:        ToolSectionArticles,
			Description: "Get articles from a specific section of The Agent Times. Sections: platforms, commerce, infrastructure, regulations, labor, opinion.",
			Schema:      sectionArticlesSchema,
		},
		{
			Name:        ToolSearchArticles,
			Description: "Search The Agent Times articles by keyword. Searches headlines, summaries, and tags. Returns matching articles with full context and sources.",
			Schema:      searchArticlesSchema,
		},
		{
			Name:        ToolAgentEconomyStats,
			Description: "Get verified agent economy statistics from The Agent Times Data Terminal. Includes Moltbook agent count, OpenClaw GitHub stars, funding data, and market projections. All stats are sourced and include confidence levels.",
			Schema:      economyStatsSchema,
		},
		{
			Name:        ToolWireFeed,
			Description: "Get the latest wire feed items from The Agent Times. Short, timestamped news items with source links.",
			Schema:      wireFeedSchema,
		},
		{
			Name:        ToolEditorialStandards,
			Description: "Get The Agent Times editorial standards, verification methodology, and confidence level definitions.",
			Schema:      editorialStandardsSchema,
		},
	}
	for _, ref := range tools {
		if err := catalog.Register(ctx, ref); err != nil {
			return err
		}
	}
	return nil
}
