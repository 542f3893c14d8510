// Package catalog holds the community-maintained records: skate spots and gear
// reviews.
//
// Reads are public. Creating a record requires a session; the creator becomes
// the owner. Owners and admins may update a record, only admins may delete one.
// Both resources share one generic store contract and one HTTP handler.
package catalog
