package dtos

type StorageInfo struct {
	PieceCID           string `json:"piece_cid"`
	CDNURL             string `json:"cdn_url,omitempty"`
	StorageCost        string `json:"storage_cost,omitempty"`
	RetrievalCost      string `json:"retrieval_cost,omitempty"`
	ProviderCount      int    `json:"provider_count,omitempty"`
	GlobalAvailability bool   `json:"global_availability,omitempty"`
	UploadDate         string `json:"upload_date,omitempty"`
}

type NetworkStatus struct {
	Network                string `json:"network"`
	Status                 string `json:"status,omitempty"`
	Error                  string `json:"error,omitempty"`
	StorageCostPerGB       string `json:"storage_cost_per_gb,omitempty"`
	RetrievalCostPerGB     string `json:"retrieval_cost_per_gb,omitempty"`
	AverageDealTime        string `json:"average_deal_time,omitempty"`
	ActiveStorageProviders int    `json:"active_storage_providers,omitempty"`
	TotalNetworkCapacity   string `json:"total_network_capacity,omitempty"`
}

type VersionEarning struct {
	RailID        string `json:"rail_id"`
	VersionID     string `json:"version_id"`
	Title         string `json:"title"`
	EarningsUSDFC string `json:"earnings_usdfc"`
	EarningsUSD   string `json:"earnings_usd"`
	PlayCount     int    `json:"play_count"`
	LastPayment   string `json:"last_payment"`
}

type CreatorEarnings struct {
	TotalEarningsUSDFC string           `json:"total_earnings_usdfc"`
	TotalEarningsUSD   string           `json:"total_earnings_usd"`
	ActiveRails        int              `json:"active_rails"`
	VersionEarnings    []VersionEarning `json:"version_earnings"`
	LastUpdated        string           `json:"last_updated"`
}

type CreatorPaymentRequest struct {
	CreatorAddress string  `json:"creator_address"`
	FanAddress     string  `json:"fan_address,omitempty"`
	USDAmount      float64 `json:"usd_amount"`
	Message        string  `json:"message,omitempty"`
}

type PaymentReceipt struct {
	Success         bool    `json:"success"`
	RailID          string  `json:"rail_id,omitempty"`
	TransactionHash string  `json:"transaction_hash,omitempty"`
	Amount          float64 `json:"amount"`
	Message         string  `json:"message"`
	TransactionNote string  `json:"transaction_note,omitempty"`
}

type WithdrawRequest struct {
	CreatorAddress   string  `json:"creator_address"`
	AmountUSD        float64 `json:"amount_usd"`
	WithdrawalMethod string  `json:"withdrawal_method"`
}

type WithdrawReceipt struct {
	Success          bool    `json:"success"`
	TransactionHash  string  `json:"transaction_hash,omitempty"`
	AmountUSD        float64 `json:"amount_usd"`
	WithdrawalMethod string  `json:"withdrawal_method"`
	EstimatedArrival string  `json:"estimated_arrival,omitempty"`
}

type UploadMetadata struct {
	Title           string      `json:"title"`
	Artist          string      `json:"artist"`
	VersionType     VersionType `json:"version_type"`
	DurationSeconds *float64    `json:"duration_seconds,omitempty"`
	FileSize        int64       `json:"file_size"`
	Format          AudioFormat `json:"format"`
}

type UploadRequest struct {
	FileID   string         `json:"file_id"`
	Content  []byte         `json:"content"`
	Metadata UploadMetadata `json:"metadata"`
}

// CreatorAnalytics is passed through as returned by the backend.
type CreatorAnalytics map[string]any

// PaymentRail is a rail as reported by the payments endpoint.
type PaymentRail struct {
	RailID   string            `json:"rail_id"`
	Payer    string            `json:"payer,omitempty"`
	Payee    string            `json:"payee,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
	// PlayCount is optional rail metadata.
	PlayCount int `json:"play_count,omitempty"`
}

type RailSettlement struct {
	Amount    string `json:"amount"`
	Timestamp string `json:"timestamp"`
}

type WalletSession struct {
	Account string `json:"account"`
	Network string `json:"network"`
}

type CacheStats map[string]int
