// Package gps reads NMEA 0183 from a serial GNSS receiver, or from a
// recorded log, and publishes the latest fix as a navigation position.
//
// RMC supplies position, ground speed and track; GGA adds altitude, fix
// quality and HDOP; VTG refreshes track and speed between fixes.
package gps
