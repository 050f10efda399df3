/*
Package httpapi serves the profile, sell-product and buy-list operations over
HTTP with gin.

Every response uses one envelope:

	{"success": true, "data": {...}}
	{"success": false, "error": {"code": "multi_match", "message": "...", "filter": "{...}", "count": 2}}

Lookup failures carry the store filter that produced them. Status codes:

	not_found, filter_mismatch            404
	multi_match, duplicate_product_id     409
	malformed_stored_data                 422
	invalid_request                       400
	store_unavailable                     503
	post_delete_verification_failed       500

Identity fields must be non-empty after trimming (the "trimmed" rule).
*/
package httpapi
