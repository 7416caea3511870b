// Package lottery holds the housing-lottery data model and the pure
// transformations the dashboard needs: enriching records with the
// local-housing side table, extracting the city index and merging fetched
// subscriber counts into display rows.
//
// Records are never mutated. Every transformation returns new values with the
// input fields copied unchanged.
package lottery
