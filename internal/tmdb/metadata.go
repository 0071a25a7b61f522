package tmdb

import (
	"context"
	"strconv"
	"strings"

	"rewatch/internal/services"
)

// Metadata is the reduced view used to fill catalog fields.
type Metadata struct {
	ID        int64
	Title     string
	Year      int
	Director  string
	Genres    []string
	Companies []string
}

// Lookup searches for title and returns metadata for the first result.
// ErrNotFound is returned when the search yields nothing.
func (c *Client) Lookup(ctx context.Context, title string, year int) (Metadata, error) {
	resp, err := c.SearchMovie(ctx, title, year)
	if err != nil {
		return Metadata{}, err
	}
	if len(resp.Results) == 0 && year > 0 {
		// Release years in the catalog are occasionally off by one.
		if resp, err = c.SearchMovie(ctx, title, 0); err != nil {
			return Metadata{}, err
		}
	}
	if len(resp.Results) == 0 {
		return Metadata{}, services.Wrap(services.ErrNotFound, "tmdb", "lookup", title, nil)
	}
	details, err := c.GetMovieDetails(ctx, resp.Results[0].ID)
	if err != nil {
		return Metadata{}, err
	}
	return details.Metadata(), nil
}

// Metadata reduces details to catalog fields.
func (d MovieDetails) Metadata() Metadata {
	meta := Metadata{
		ID:        d.ID,
		Title:     d.Title,
		Year:      releaseYear(d.ReleaseDate),
		Genres:    make([]string, 0, len(d.Genres)),
		Companies: make([]string, 0, len(d.ProductionCompanies)),
	}
	var directors []string
	for _, member := range d.Credits.Crew {
		if member.Job == "Director" {
			directors = append(directors, member.Name)
		}
	}
	meta.Director = strings.Join(directors, ", ")
	for _, genre := range d.Genres {
		meta.Genres = append(meta.Genres, genre.Name)
	}
	for _, company := range d.ProductionCompanies {
		meta.Companies = append(meta.Companies, company.Name)
	}
	return meta
}

func releaseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
