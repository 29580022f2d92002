package services

import (
	"sort"

	"github.com/procurelink/rfq-service/internal/models"
)

// Evaluate computes the evaluation result for one bid under one RFQ's
// preference rules. Pure: identical inputs always yield identical output.
func Evaluate(rfq *models.RFQ, bid *models.Bid) models.EvaluationResult {
	result := models.EvaluationResult{
		BidID:         bid.ID,
		SellerID:      bid.SellerID,
		TotalAmount:   bid.TotalAmount,
		AdjustedPrice: bid.TotalAmount,
	}
	if rfq.SMMEPreference && bid.SellerIsSMME {
		result.AdjustedPrice = bid.TotalAmount * (1 - rfq.SMMEBonusPercent/100)
		result.SMMEApplied = true
	}
	return result
}

// RankBids evaluates every non-withdrawn bid and ranks them ascending by
// adjusted price. Ties go to the earlier submission, then the lower bid ID,
// so the ranking is deterministic.
func RankBids(rfq *models.RFQ, bids []models.Bid) []models.EvaluationResult {
	type scored struct {
		bid    models.Bid
		result models.EvaluationResult
	}

	var open []scored
	for _, bid := range bids {
		if bid.Status != models.WithdrawnBid {
			open = append(open, scored{bid: bid, result: Evaluate(rfq, &bid)})
		}
	}

	sort.Slice(open, func(i, j int) bool {
		if open[i].result.AdjustedPrice != open[j].result.AdjustedPrice {
			return open[i].result.AdjustedPrice < open[j].result.AdjustedPrice
		}
		if !open[i].bid.CreatedAt.Equal(open[j].bid.CreatedAt) {
			return open[i].bid.CreatedAt.Before(open[j].bid.CreatedAt)
		}
		return open[i].bid.ID < open[j].bid.ID
	})

	results := make([]models.EvaluationResult, len(open))
	for i, s := range open {
		s.result.Rank = i + 1
		results[i] = s.result
	}
	return results
}
