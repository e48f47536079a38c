package geo

import (
	"context"
	"errors"
	"strings"
)

var ErrTerritoryNotFound = errors.New("territory not found")

// Territory is a province or regency reference entry. Codes follow the
// national numbering: 2 digits for provinces, 4 for regencies where the
// first 2 identify the parent province.
type Territory struct {
	Code string
	Name string
}

// Service resolves territory codes against the national geo reference.
// Consumed external collaborator; only the surface is defined here.
type Service interface {
	LookupProvince(ctx context.Context, code string) (Territory, error)
	LookupRegency(ctx context.Context, code string) (Territory, error)
	RegenciesOfProvince(ctx context.Context, provinceCode string) ([]Territory, error)
}

type StaticService struct {
	provinces map[string]Territory
	regencies map[string]Territory
}

func NewStaticService(provinces, regencies []Territory) *StaticService {
	s := &StaticService{
		provinces: make(map[string]Territory, len(provinces)),
		regencies: make(map[string]Territory, len(regencies)),
	}
	for _, p := range provinces {
		s.provinces[p.Code] = p
	}
	for _, r := range regencies {
		s.regencies[r.Code] = r
	}
	return s
}

func (s *StaticService) LookupProvince(_ context.Context, code string) (Territory, error) {
	t, ok := s.provinces[strings.TrimSpace(code)]
	if !ok {
		return Territory{}, ErrTerritoryNotFound
	}
	return t, nil
}

func (s *StaticService) LookupRegency(_ context.Context, code string) (Territory, error) {
	t, ok := s.regencies[strings.TrimSpace(code)]
	if !ok {
		return Territory{}, ErrTerritoryNotFound
	}
	return t, nil
}

func (s *StaticService) RegenciesOfProvince(_ context.Context, provinceCode string) ([]Territory, error) {
	provinceCode = strings.TrimSpace(provinceCode)
	if _, ok := s.provinces[provinceCode]; !ok {
		return nil, ErrTerritoryNotFound
	}
	var out []Territory
	for code, t := range s.regencies {
		if strings.HasPrefix(code, provinceCode) {
			out = append(out, t)
		}
	}
	return out, nil
}
