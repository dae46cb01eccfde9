package recipe

import "strings"

const (
	// DefaultConfidenceThreshold 標籤信心值需嚴格大於此值
	DefaultConfidenceThreshold = 70.0
	// DefaultMaxDetected 最多回傳的標準食材數量
	DefaultMaxDetected = 10
)

// ReconcileOptions 標籤對應參數
type ReconcileOptions struct {
	// ConfidenceThreshold 為 nil 時使用 DefaultConfidenceThreshold；0 是合法值
	ConfidenceThreshold *float64
	// MaxResults <= 0 時使用 DefaultMaxDetected
	MaxResults int
}

// Threshold 回傳 v 的指標，方便填入 ConfidenceThreshold
func Threshold(v float64) *float64 {
	return &v
}

func (o ReconcileOptions) threshold() float64 {
	if o.ConfidenceThreshold == nil {
		return DefaultConfidenceThreshold
	}
	return *o.ConfidenceThreshold
}

func (o ReconcileOptions) maxResults() int {
	if o.MaxResults <= 0 {
		return DefaultMaxDetected
	}
	return o.MaxResults
}

// Lookup 依詞彙表順序找出第一個出現在 name（小寫）中的關鍵字
func (v Vocabulary) Lookup(name string) (string, bool) {
	lower := strings.ToLower(name)
	for _, m := range v {
		if strings.Contains(lower, m.Keyword) {
			return m.Canonical, true
		}
	}
	return "", false
}

// Reconcile 將外部標籤對應到標準食材。
// 依輸入順序處理；信心值 <= 門檻者略過；每個標籤取詞彙表中第一個命中的關鍵字；
// 以標準食材去重，累積到 MaxResults 個即停止。未命中的標籤不算錯誤。
func Reconcile(labels []Label, vocab Vocabulary, opts ReconcileOptions) []string {
	threshold, limit := opts.threshold(), opts.maxResults()

	out := make([]string, 0, limit)
	seen := make(map[string]bool)
	for _, label := range labels {
		if len(out) >= limit {
			break
		}
		if label.Confidence <= threshold {
			continue
		}
		canonical, ok := vocab.Lookup(label.Name)
		if !ok || seen[canonical] {
			continue
		}
		seen[canonical] = true
		out = append(out, canonical)
	}
	return out
}
