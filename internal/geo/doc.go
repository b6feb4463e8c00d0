// Package geo holds the coordinate value type shared by posts, device
// location readings and image geotags, together with the validity gate used
// before a coordinate is displayed on a map or accepted for publication.
//
// A coordinate is valid when both components are finite and latitude lies in
// [-90, 90] and longitude in [-180, 180]. Bounds are inclusive.
package geo
