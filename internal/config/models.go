package config

// UserConfig identifies the mailbox owner the pipeline scores for
type UserConfig struct {
	Address string
}

// ScoringConfig holds pipeline-wide scoring settings
type ScoringConfig struct {
	MaxBodySize int
}

// RelationshipConfig holds the relationship scorer weights
type RelationshipConfig struct {
	ReplyFrequencyWeight float64
	TwoWayWeight         float64
	RecencyWeight        float64
	VolumeWeight         float64
	ManualVIPWeight      float64
	RecencyDecayDays     float64
}

// BatchConfig holds batch scoring settings
type BatchConfig struct {
	Parallelism int
}

// HistoryConfig holds the interaction history store settings
type HistoryConfig struct {
	Type       string
	SQLitePath string
	MySQLDSN   string
}

// VIPConfig holds the manual VIP lists
type VIPConfig struct {
	Addresses []string
	Domains   []string
}

// GetUser returns the user configuration
func (c *Config) GetUser() UserConfig {
	return UserConfig{
		Address: c.GetString("user.address"),
	}
}

// GetScoring returns the scoring configuration
func (c *Config) GetScoring() ScoringConfig {
	return ScoringConfig{
		MaxBodySize: c.GetInt("scoring.max_body_size"),
	}
}

// GetRelationship returns the relationship scorer configuration
func (c *Config) GetRelationship() RelationshipConfig {
	return RelationshipConfig{
		ReplyFrequencyWeight: c.GetFloat64("relationship.reply_frequency_weight"),
		TwoWayWeight:         c.GetFloat64("relationship.two_way_weight"),
		RecencyWeight:        c.GetFloat64("relationship.recency_weight"),
		VolumeWeight:         c.GetFloat64("relationship.volume_weight"),
		ManualVIPWeight:      c.GetFloat64("relationship.manual_vip_weight"),
		RecencyDecayDays:     c.GetFloat64("relationship.recency_decay_days"),
	}
}

// GetBatch returns the batch scoring configuration
func (c *Config) GetBatch() BatchConfig {
	return BatchConfig{
		Parallelism: c.GetInt("batch.parallelism"),
	}
}

// GetHistory returns the history store configuration
func (c *Config) GetHistory() HistoryConfig {
	return HistoryConfig{
		Type:       c.GetString("history.type"),
		SQLitePath: c.GetString("history.sqlite_path"),
		MySQLDSN:   c.GetString("history.mysql_dsn"),
	}
}

// GetVIP returns the manual VIP configuration
func (c *Config) GetVIP() VIPConfig {
	return VIPConfig{
		Addresses: c.GetStringSlice("vip.addresses"),
		Domains:   c.GetStringSlice("vip.domains"),
	}
}
