// Package geo holds the coordinate engine: WGS84 coordinates, bearings and
// distances, the five textual notations (decimal degrees, DDM, DMS, UTM and
// MGRS/UPS), geodesic inverse and spherical direct solutions, and the
// geofence specifications built on them.
//
// Everything here is a value type or a pure function; it is safe to use
// from any number of goroutines.
package geo
