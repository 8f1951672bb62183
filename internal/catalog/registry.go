// Copyright (c) 2025 Tripmart
// Licensed under the MIT License. See LICENSE file in the project root for details.

package catalog

import (
	"sort"

	"tripmart/cli/internal/collection"
	"tripmart/cli/internal/query"
)

const apiPrefix = "/api/"

// common filter fields shared by the priced listings
var (
	searchField = query.Param{Name: "searchQuery", Kind: query.String}
	minPrice    = query.Param{Name: "minPrice", Kind: query.Number}
	maxPrice    = query.Param{Name: "maxPrice", Kind: query.Number}
	sortBy      = query.Param{Name: "sortBy", Kind: query.String}
	order       = query.Param{Name: "order", Kind: query.Order}
)

func newResource(name, singular string) Resource {
	return Resource{
		Name:       name,
		Singular:   singular,
		Path:       apiPrefix + name,
		SearchPath: apiPrefix + name + "/filter-sort-search",
		IDField:    "_id",
	}
}

var resources = func() map[string]Resource {
	products := newResource("products", "product")
	products.Fields = query.FieldMap{
		"search":    searchField,
		"minPrice":  minPrice,
		"maxPrice":  maxPrice,
		"minRating": {Name: "minRating", Kind: query.Number},
		"sortBy":    sortBy,
		"order":     order,
	}
	products.Columns = []string{"_id", "name", "price", "quantity", "rating", "archived"}
	products.Toggles = []string{"archived"}
	products.Attrs = map[string]AttrKind{
		"name":        AttrString,
		"description": AttrString,
		"price":       AttrNumber,
		"quantity":    AttrNumber,
		"archived":    AttrBool,
	}
	products.Required = []string{"name", "price", "quantity"}
	products.UploadField = "image"

	activities := newResource("activities", "activity")
	activities.Fields = query.FieldMap{
		"search":    searchField,
		"category":  {Name: "category", Kind: query.String},
		"tag":       {Name: "tags", Kind: query.String},
		"minPrice":  minPrice,
		"maxPrice":  maxPrice,
		"from":      {Name: "startDate", Kind: query.Date},
		"to":        {Name: "endDate", Kind: query.Date},
		"minRating": {Name: "minRating", Kind: query.Number},
		"sortBy":    sortBy,
		"order":     order,
	}
	activities.Columns = []string{"_id", "name", "date", "price", "category", "rating", "flagged"}
	activities.Toggles = []string{"flagged", "bookingOpen"}
	activities.Attrs = map[string]AttrKind{
		"name":        AttrString,
		"date":        AttrDate,
		"time":        AttrString,
		"location":    AttrString,
		"price":       AttrNumber,
		"category":    AttrString,
		"tags":        AttrList,
		"discount":    AttrNumber,
		"bookingOpen": AttrBool,
		"flagged":     AttrBool,
	}
	activities.Required = []string{"name", "date", "price"}

	itineraries := newResource("itineraries", "itinerary")
	itineraries.Fields = query.FieldMap{
		"search":   searchField,
		"minPrice": minPrice,
		"maxPrice": maxPrice,
		"from":     {Name: "startDate", Kind: query.Date},
		"to":       {Name: "endDate", Kind: query.Date},
		"language": {Name: "language", Kind: query.String},
		"tag":      {Name: "preferences", Kind: query.String},
		"sortBy":   sortBy,
		"order":    order,
	}
	itineraries.Columns = []string{"_id", "name", "language", "price", "activated", "flagged"}
	itineraries.Toggles = []string{"activated", "flagged"}
	itineraries.Attrs = map[string]AttrKind{
		"name":            AttrString,
		"language":        AttrString,
		"price":           AttrNumber,
		"availableDates":  AttrList,
		"accessibility":   AttrBool,
		"pickupLocation":  AttrString,
		"dropoffLocation": AttrString,
		"activated":       AttrBool,
		"flagged":         AttrBool,
	}
	itineraries.Required = []string{"name", "language", "price"}

	places := newResource("historical-places", "historical place")
	places.Fields = query.FieldMap{
		"search": searchField,
		"tag":    {Name: "tags", Kind: query.String},
	}
	places.Columns = []string{"_id", "name", "location", "openingHours", "ticketPrice"}
	places.Attrs = map[string]AttrKind{
		"name":         AttrString,
		"description":  AttrString,
		"location":     AttrString,
		"openingHours": AttrString,
		"ticketPrice":  AttrNumber,
		"website":      AttrURL,
		"tags":         AttrList,
	}
	places.Required = []string{"name", "location"}
	places.UploadField = "photo"

	complaints := newResource("complaints", "complaint")
	complaints.Fields = query.FieldMap{
		"status": {Name: "status", Kind: query.String},
		"sortBy": sortBy,
		"order":  order,
	}
	complaints.Columns = []string{"_id", "title", "status", "date", "resolved"}
	complaints.Toggles = []string{"resolved"}
	complaints.Attrs = map[string]AttrKind{
		"title":    AttrString,
		"body":     AttrString,
		"date":     AttrDate,
		"status":   AttrString,
		"reply":    AttrString,
		"resolved": AttrBool,
	}
	complaints.Required = []string{"title", "body"}
	complaints.DateSort = &collection.DateSort{Field: "date"}

	promos := newResource("promo-codes", "promo code")
	promos.Fields = query.FieldMap{
		"search": {Name: "code", Kind: query.String},
	}
	promos.Columns = []string{"_id", "code", "discount", "expiryDate", "active"}
	promos.Toggles = []string{"active"}
	promos.Attrs = map[string]AttrKind{
		"code":       AttrString,
		"discount":   AttrNumber,
		"expiryDate": AttrDate,
		"active":     AttrBool,
	}
	promos.Required = []string{"code", "discount"}

	users := newResource("users", "user")
	users.Fields = query.FieldMap{
		"search": {Name: "username", Kind: query.String},
		"role":   {Name: "role", Kind: query.String},
	}
	users.Columns = []string{"_id", "username", "email", "role", "accepted"}
	users.Toggles = []string{"accepted"}
	users.Attrs = map[string]AttrKind{
		"username": AttrString,
		"email":    AttrString,
		"role":     AttrString,
		"accepted": AttrBool,
	}
	users.Required = []string{"username", "email", "role"}

	out := map[string]Resource{}
	for _, r := range []Resource{products, activities, itineraries, places, complaints, promos, users} {
		out[r.Name] = r
	}
	return out
}()

// Lookup returns the resource with the given plural name.
func Lookup(name string) (Resource, bool) {
	r, ok := resources[name]
	return r, ok
}

// Names returns every resource name in sorted order.
func Names() []string {
	names := make([]string, 0, len(resources))
	for name := range resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every resource sorted by name.
func All() []Resource {
	out := make([]Resource, 0, len(resources))
	for _, name := range Names() {
		out = append(out, resources[name])
	}
	return out
}
