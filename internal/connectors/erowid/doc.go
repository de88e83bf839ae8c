// Package erowid implements the Erowid reference index source.
package erowid
