package constants

type (
	APIStatus    string
	CacheName    string
	ActivityKind string
)

const (
	APIStatusOk   APIStatus = "ok"
	APIStatusDown APIStatus = "down"
)

// Cache names double as metric labels and redis namespaces.
const (
	CacheAudioMetadata   CacheName = "audio_metadata"
	CacheSocialProfiles  CacheName = "social_profiles"
	CacheStorageInfo     CacheName = "storage_info"
	CacheCreatorEarnings CacheName = "creator_earnings"
)

const (
	ActivityCast     ActivityKind = "CAST"
	ActivityPayment  ActivityKind = "CREATOR_PAYMENT"
	ActivityWithdraw ActivityKind = "WITHDRAW"
	ActivityUpload   ActivityKind = "UPLOAD"
)

const (
	ActivityStatusOK     = "ok"
	ActivityStatusFailed = "failed"
)

// USDFC carries six decimals.
const USDFCDecimals = 1_000_000

const UnknownArtist = "Unknown"
