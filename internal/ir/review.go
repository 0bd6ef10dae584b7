package ir

import (
	"strconv"
	"strings"
)

// ReviewInfo is one review, decoded from a reviewSignatures column.
type ReviewInfo struct {
	ReviewID   int  `json:"review_id"`
	ContactID  int  `json:"contact_id"`
	ReviewType int  `json:"review_type"`
	Submitted  bool `json:"submitted"`
	Round      int  `json:"round"`
	// RequestedBy is the contact who asked for an external review.
	RequestedBy int            `json:"requested_by,omitempty"`
	Scores      map[string]int `json:"scores,omitempty"`
}

// ParseReviewSignatures decodes a reviewSignatures column. Each review is
// "reviewId contactId reviewType submitted round [requestedBy]
// [field=value ...]" and reviews are separated by commas.
func ParseReviewSignatures(s string) []ReviewInfo {
	var out []ReviewInfo
	for _, part := range strings.Split(s, ",") {
		f := strings.Fields(part)
		if len(f) < 5 {
			continue
		}
		var ri ReviewInfo
		ri.ReviewID, _ = strconv.Atoi(f[0])
		ri.ContactID, _ = strconv.Atoi(f[1])
		ri.ReviewType, _ = strconv.Atoi(f[2])
		sub, _ := strconv.ParseInt(f[3], 10, 64)
		ri.Submitted = sub > 0
		ri.Round, _ = strconv.Atoi(f[4])
		rest := f[5:]
		if len(rest) > 0 && !strings.Contains(rest[0], "=") {
			ri.RequestedBy, _ = strconv.Atoi(rest[0])
			rest = rest[1:]
		}
		for _, kv := range rest {
			k, v, ok := strings.Cut(kv, "=")
			if !ok {
				continue
			}
			n, err := strconv.Atoi(v)
			if err != nil || n == 0 {
				continue
			}
			if ri.Scores == nil {
				ri.Scores = make(map[string]int)
			}
			ri.Scores[k] = n
		}
		out = append(out, ri)
	}
	return out
}

// Reviews returns the row's reviews. The row must have been fetched with
// review signatures.
func (r *PaperRow) Reviews() []ReviewInfo {
	return ParseReviewSignatures(r.ReviewSignatures)
}

// ReviewWordCounts decodes the reviewWordCountSignature column, one entry
// per review in review id order. Reviews without a count decode as -1.
func (r *PaperRow) ReviewWordCounts() []int {
	if r.ReviewWordCountSignature == "" {
		return nil
	}
	parts := strings.Split(r.ReviewWordCountSignature, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			n = -1
		}
		out[i] = n
	}
	return out
}
