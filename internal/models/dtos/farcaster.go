package dtos

type FarcasterUser struct {
	FID            uint64  `json:"fid"`
	Username       string  `json:"username"`
	DisplayName    *string `json:"display_name,omitempty"`
	Bio            *string `json:"bio,omitempty"`
	PfpURL         *string `json:"pfp_url,omitempty"`
	FollowerCount  *uint32 `json:"follower_count,omitempty"`
	FollowingCount *uint32 `json:"following_count,omitempty"`
}

type FarcasterCast struct {
	Hash           string   `json:"hash"`
	AuthorFID      uint64   `json:"author_fid"`
	Text           string   `json:"text"`
	Timestamp      string   `json:"timestamp"`
	RepliesCount   uint32   `json:"replies_count"`
	ReactionsCount uint32   `json:"reactions_count"`
	Embeds         []string `json:"embeds,omitempty"`
}

type SocialRecommendation struct {
	VersionID             string      `json:"version_id"`
	Title                 string      `json:"title"`
	Artist                string      `json:"artist"`
	VersionType           VersionType `json:"version_type"`
	RecommendedByFID      uint64      `json:"recommended_by_fid"`
	RecommendedByUsername string      `json:"recommended_by_username"`
	Reason                string      `json:"reason"`
	Score                 float64     `json:"score"`
}

type CastRequest struct {
	Text     string `json:"text"`
	EmbedURL string `json:"embed_url,omitempty"`
}

// CastReceipt is what the backend returns after tracking a cast.
type CastReceipt map[string]string

type ProfilesRequest struct {
	FIDs []uint64 `json:"fids"`
}

type SocialStatus struct {
	Loaded      bool `json:"loaded"`
	Environment bool `json:"environment"`
	CacheSize   int  `json:"cache_size"`
}

// CastResult is the outcome of publishing a cast through the relay.
type CastResult struct {
	Hash     string `json:"hash"`
	Text     string `json:"text"`
	EmbedURL string `json:"embed_url,omitempty"`
	Tracked  bool   `json:"tracked"`
}
