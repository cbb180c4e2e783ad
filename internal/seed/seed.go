// Package seed upserts the fixed sample catalog. Running it twice leaves
// the same documents in place.
package seed

import (
	"context"
	"fmt"

	"cinelog/internal/catalog"
	"cinelog/internal/store"
)

// Type is intentionally left unset on seeded items; the catalog loader
// assigns it from the source collection.
var movies = []catalog.Item{
	{ID: "the-shawshank-redemption", Title: "The Shawshank Redemption", Year: "1994", Poster: "/posters/the-shawshank-redemption.jpg", Description: "Two imprisoned men bond over a number of years, finding solace and eventual redemption through acts of common decency.", Director: "Frank Darabont", Actors: "Tim Robbins, Morgan Freeman", Genre: "Drama"},
	{ID: "the-godfather", Title: "The Godfather", Year: "1972", Poster: "/posters/the-godfather.jpg", Description: "The aging patriarch of an organized crime dynasty transfers control of his clandestine empire to his reluctant son.", Director: "Francis Ford Coppola", Actors: "Marlon Brando, Al Pacino", Genre: "Crime, Drama"},
	{ID: "inception", Title: "Inception", Year: "2010", Poster: "/posters/inception.jpg", Description: "A thief who steals corporate secrets through dream-sharing technology is given the inverse task of planting an idea.", Director: "Christopher Nolan", Actors: "Leonardo DiCaprio, Joseph Gordon-Levitt", Genre: "Action, Sci-Fi"},
	{ID: "spirited-away", Title: "Spirited Away", Year: "2001", Poster: "/posters/spirited-away.jpg", Description: "During her family's move to the suburbs, a sullen girl wanders into a world ruled by gods, witches, and spirits.", Director: "Hayao Miyazaki", Actors: "Rumi Hiiragi, Miyu Irino", Genre: "Animation, Fantasy"},
	{ID: "parasite", Title: "Parasite", Year: "2019", Poster: "/posters/parasite.jpg", Description: "Greed and class discrimination threaten the newly formed symbiotic relationship between a wealthy family and a destitute clan.", Director: "Bong Joon Ho", Actors: "Song Kang-ho, Lee Sun-kyun", Genre: "Thriller, Drama"},
	{ID: "the-dark-knight", Title: "The Dark Knight", Year: "2008", Poster: "/posters/the-dark-knight.jpg", Description: "Batman must accept one of the greatest psychological and physical tests of his ability to fight injustice.", Director: "Christopher Nolan", Actors: "Christian Bale, Heath Ledger", Genre: "Action, Crime"},
	{ID: "pulp-fiction", Title: "Pulp Fiction", Year: "1994", Poster: "/posters/pulp-fiction.jpg", Description: "The lives of two mob hitmen, a boxer, a gangster and his wife intertwine in four tales of violence and redemption.", Director: "Quentin Tarantino", Actors: "John Travolta, Uma Thurman", Genre: "Crime, Drama"},
	{ID: "interstellar", Title: "Interstellar", Year: "2014", Poster: "/posters/interstellar.jpg", Description: "A team of explorers travel through a wormhole in space in an attempt to ensure humanity's survival.", Director: "Christopher Nolan", Actors: "Matthew McConaughey, Anne Hathaway", Genre: "Adventure, Sci-Fi"},
}

var series = []catalog.Item{
	{ID: "breaking-bad", Title: "Breaking Bad", Year: "2008", Poster: "/posters/breaking-bad.jpg", Description: "A chemistry teacher diagnosed with inoperable lung cancer turns to manufacturing methamphetamine to secure his family's future.", Director: "Vince Gilligan", Actors: "Bryan Cranston, Aaron Paul", Genre: "Crime, Drama"},
	{ID: "the-wire", Title: "The Wire", Year: "2002", Poster: "/posters/the-wire.jpg", Description: "The Baltimore drug scene, as seen through the eyes of drug dealers and law enforcement.", Director: "David Simon", Actors: "Dominic West, Idris Elba", Genre: "Crime, Drama"},
	{ID: "chernobyl", Title: "Chernobyl", Year: "2019", Poster: "/posters/chernobyl.jpg", Description: "In April 1986, an explosion at the Chernobyl nuclear power plant becomes one of the world's worst man-made catastrophes.", Director: "Craig Mazin", Actors: "Jared Harris, Stellan Skarsgård", Genre: "Drama, History"},
	{ID: "dark", Title: "Dark", Year: "2017", Poster: "/posters/dark.jpg", Description: "A family saga with a supernatural twist, set in a German town where the disappearance of two children exposes double lives.", Director: "Baran bo Odar", Actors: "Louis Hofmann, Lisa Vicari", Genre: "Sci-Fi, Thriller"},
	{ID: "the-office", Title: "The Office", Year: "2005", Poster: "/posters/the-office.jpg", Description: "A mockumentary on a group of typical office workers, where the workday consists of ego clashes and inappropriate behavior.", Director: "Greg Daniels", Actors: "Steve Carell, Rainn Wilson", Genre: "Comedy"},
	{ID: "true-detective", Title: "True Detective", Year: "2014", Poster: "/posters/true-detective.jpg", Description: "Seasonal anthology series in which police investigations unearth the personal and professional secrets of those involved.", Director: "Nic Pizzolatto", Actors: "Matthew McConaughey, Woody Harrelson", Genre: "Crime, Mystery"},
}

// Run writes the sample catalog into st.
func Run(ctx context.Context, st store.Store) error {
	for _, item := range movies {
		if _, err := st.Set(ctx, catalog.Collection(catalog.TypeMovie), item.ID, item); err != nil {
			return fmt.Errorf("failed to seed movie %s: %w", item.ID, err)
		}
	}
	for _, item := range series {
		if _, err := st.Set(ctx, catalog.Collection(catalog.TypeSeries), item.ID, item); err != nil {
			return fmt.Errorf("failed to seed series %s: %w", item.ID, err)
		}
	}
	return nil
}

// Counts reports the sample catalog size, for logging.
func Counts() (int, int) {
	return len(movies), len(series)
}
