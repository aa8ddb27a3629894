package repositories

// Fully qualified table names. Column names and types are part of the
// contract for downstream consumers querying these layers directly.
const (
	TableRawCharacters = "raw.characters"
	TableRawEpisodes   = "raw.episodes"
	TableDimCharacters = "dbo.dim_characters"
	TableDimEpisodes   = "dbo.dim_episodes"
	TableBridge        = "dbo.bridge_character_episodes"
)
