package catalog

import "astrobooking/internal/domain"

type ListTypesResponse struct {
	Types []domain.ConsultationType `json:"types"`
}
