// Package scheduler builds day-ahead occupancy plans. A plan holds one
// forecast slot per opening hour and suggests the quietest hours for a
// visit. Plans can be exported to JSON or CSV.
package scheduler
