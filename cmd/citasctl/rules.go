package main

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/citas-api/internal/service"
	"github.com/noah-isme/citas-api/pkg/timespan"
)

// ruleFile is the on-disk format accepted by "citasctl import":
//
//	reglas:
//	  - idPsicologo: 3
//	    desde: 2025-01-06
//	    hasta: 2025-03-28
//	    horaInicio: "09:00"
//	    horaFin: "12:00"
//	    dias: [lunes, miercoles]
type ruleFile struct {
	Rules []rule `yaml:"reglas"`
}

type rule struct {
	PractitionerID int64    `yaml:"idPsicologo"`
	From           string   `yaml:"desde"`
	To             string   `yaml:"hasta"`
	Start          string   `yaml:"horaInicio"`
	End            string   `yaml:"horaFin"`
	Days           []string `yaml:"dias"`
}

func parseRules(r io.Reader) ([]service.BulkAvailabilityRequest, error) {
	var file ruleFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}

	reqs := make([]service.BulkAvailabilityRequest, 0, len(file.Rules))
	for i, rl := range file.Rules {
		req, err := rl.request()
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i+1, err)
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

func (r rule) request() (service.BulkAvailabilityRequest, error) {
	from, err := timespan.ParseDate(r.From)
	if err != nil {
		return service.BulkAvailabilityRequest{}, err
	}
	to, err := timespan.ParseDate(r.To)
	if err != nil {
		return service.BulkAvailabilityRequest{}, err
	}
	start, err := timespan.ParseClock(r.Start)
	if err != nil {
		return service.BulkAvailabilityRequest{}, err
	}
	end, err := timespan.ParseClock(r.End)
	if err != nil {
		return service.BulkAvailabilityRequest{}, err
	}
	days := timespan.AllWeekdays
	if len(r.Days) > 0 {
		if days, err = timespan.ParseWeekdays(strings.Join(r.Days, ",")); err != nil {
			return service.BulkAvailabilityRequest{}, err
		}
	}
	return service.BulkAvailabilityRequest{
		PractitionerID: r.PractitionerID,
		From:           &from,
		To:             &to,
		Start:          &start,
		End:            &end,
		Days:           days,
	}, nil
}
