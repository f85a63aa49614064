// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kinship Contributors

package query

import "github.com/kinship-dev/kinship/internal/store"

// Paginate slices one page out of the ordered result set. Page numbers start
// at 1; page <= 0 disables pagination and returns everything. A page past
// the end yields an empty slice. The caller reports the pre-pagination total
// separately.
func Paginate(objs []store.Object, page, pageSize int) []store.Object {
	if page <= 0 || pageSize <= 0 {
		return objs
	}
	start := (page - 1) * pageSize
	if start >= len(objs) {
		return []store.Object{}
	}
	end := start + pageSize
	if end > len(objs) {
		end = len(objs)
	}
	return objs[start:end]
}
