package feed

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/net/html/charset"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type venuesDoc struct {
	XMLName xml.Name   `xml:"venues"`
	Venues  []rawVenue `xml:"venue"`
}

type rawVenue struct {
	ID        string `xml:"id,attr" validate:"required"`
	NameC     string `xml:"venuec"`
	NameE     string `xml:"venuee"`
	Latitude  string `xml:"latitude" validate:"omitempty,latitude"`
	Longitude string `xml:"longitude" validate:"omitempty,longitude"`
}

type eventsDoc struct {
	XMLName xml.Name   `xml:"events"`
	Events  []rawEvent `xml:"event"`
}

type rawEvent struct {
	ID            string `xml:"id,attr" validate:"required"`
	VenueID       string `xml:"venueid" validate:"required"`
	Quota         string `xml:"quota" validate:"omitempty,number"`
	TitleC        string `xml:"titlec"`
	TitleE        string `xml:"titlee"`
	Cat1          string `xml:"cat1"`
	Cat2          string `xml:"cat2"`
	PreDateC      string `xml:"predateC"`
	PreDateE      string `xml:"predateE"`
	ProgTimeC     string `xml:"progtimec"`
	ProgTimeE     string `xml:"progtimee"`
	AgeLimitC     string `xml:"agelimitc"`
	AgeLimitE     string `xml:"agelimite"`
	PriceC        string `xml:"pricec"`
	PriceE        string `xml:"pricee"`
	DescC         string `xml:"descc"`
	DescE         string `xml:"desce"`
	URLC          string `xml:"urlc"`
	URLE          string `xml:"urle"`
	PresenterOrgC string `xml:"presenterorgc"`
	PresenterOrgE string `xml:"presenterorge"`
}

// ParseVenues decodes and validates a venues document. A document with a
// single <venue> yields a one-element slice; one with none yields an empty
// slice.
func ParseVenues(url string, body []byte) ([]VenueRecord, error) {
	var doc venuesDoc
	if err := decode(body, &doc); err != nil {
		return nil, &ParseFailure{URL: url, Cause: err}
	}
	out := make([]VenueRecord, 0, len(doc.Venues))
	for i := range doc.Venues {
		rv := &doc.Venues[i]
		rv.ID = strings.TrimSpace(rv.ID)
		rv.Latitude = strings.TrimSpace(rv.Latitude)
		rv.Longitude = strings.TrimSpace(rv.Longitude)
		if err := validate.Struct(rv); err != nil {
			return nil, &ParseFailure{URL: url, Cause: fmt.Errorf("venue[%d]: %w", i, err)}
		}
		v := VenueRecord{
			ID:    rv.ID,
			NameC: strings.TrimSpace(rv.NameC),
			NameE: strings.TrimSpace(rv.NameE),
		}
		var err error
		if v.Latitude, err = optionalFloat(rv.Latitude); err != nil {
			return nil, &ParseFailure{URL: url, Cause: fmt.Errorf("venue[%d] latitude: %w", i, err)}
		}
		if v.Longitude, err = optionalFloat(rv.Longitude); err != nil {
			return nil, &ParseFailure{URL: url, Cause: fmt.Errorf("venue[%d] longitude: %w", i, err)}
		}
		out = append(out, v)
	}
	return out, nil
}

// ParseEvents decodes and validates an events document. The venue reference
// of every event is kept as trimmed text so it compares against venue ids as
// a string, whatever it looks like.
func ParseEvents(url string, body []byte) ([]EventRecord, error) {
	var doc eventsDoc
	if err := decode(body, &doc); err != nil {
		return nil, &ParseFailure{URL: url, Cause: err}
	}
	out := make([]EventRecord, 0, len(doc.Events))
	for i := range doc.Events {
		re := &doc.Events[i]
		re.ID = strings.TrimSpace(re.ID)
		re.VenueID = strings.TrimSpace(re.VenueID)
		re.Quota = strings.TrimSpace(re.Quota)
		if err := validate.Struct(re); err != nil {
			return nil, &ParseFailure{URL: url, Cause: fmt.Errorf("event[%d]: %w", i, err)}
		}
		ev := EventRecord{
			ID:            re.ID,
			VenueID:       re.VenueID,
			TitleC:        strings.TrimSpace(re.TitleC),
			TitleE:        strings.TrimSpace(re.TitleE),
			Cat1:          strings.TrimSpace(re.Cat1),
			Cat2:          strings.TrimSpace(re.Cat2),
			PreDateC:      strings.TrimSpace(re.PreDateC),
			PreDateE:      strings.TrimSpace(re.PreDateE),
			ProgTimeC:     strings.TrimSpace(re.ProgTimeC),
			ProgTimeE:     strings.TrimSpace(re.ProgTimeE),
			AgeLimitC:     strings.TrimSpace(re.AgeLimitC),
			AgeLimitE:     strings.TrimSpace(re.AgeLimitE),
			PriceC:        strings.TrimSpace(re.PriceC),
			PriceE:        strings.TrimSpace(re.PriceE),
			DescC:         strings.TrimSpace(re.DescC),
			DescE:         strings.TrimSpace(re.DescE),
			URLC:          strings.TrimSpace(re.URLC),
			URLE:          strings.TrimSpace(re.URLE),
			PresenterOrgC: strings.TrimSpace(re.PresenterOrgC),
			PresenterOrgE: strings.TrimSpace(re.PresenterOrgE),
		}
		if re.Quota != "" {
			q, err := strconv.Atoi(re.Quota)
			if err != nil {
				return nil, &ParseFailure{URL: url, Cause: fmt.Errorf("event[%d] quota: %w", i, err)}
			}
			ev.Quota = &q
		}
		out = append(out, ev)
	}
	return out, nil
}

func decode(body []byte, v any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return errors.New("empty document")
	}
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.CharsetReader = charset.NewReaderLabel
	return dec.Decode(v)
}

func optionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
