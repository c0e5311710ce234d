package spots

import "time"

type LocationResponse struct {
	ID         int64          `json:"id"`
	Name       string         `json:"name"`
	Address    string         `json:"address"`
	City       string         `json:"city"`
	TotalSpots int64          `json:"totalSpots"`
	Zones      map[Zone]int64 `json:"zones"`
	CreatedAt  time.Time      `json:"createdAt"`
}

func toLocationResponse(location *Location, counts map[Zone]int64) *LocationResponse {
	var total int64
	for _, n := range counts {
		total += n
	}
	return &LocationResponse{
		ID:         location.ID,
		Name:       location.Name,
		Address:    location.Address,
		City:       location.City,
		TotalSpots: total,
		Zones:      counts,
		CreatedAt:  location.CreatedAt,
	}
}
