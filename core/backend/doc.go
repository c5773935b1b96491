/*
Package backend implements the coffee shop REST API

A backend manages the drink table and provides these routes:

	GET    /drinks               public, short representation
	GET    /drinks-detail        needs get:drinks-detail, long representation
	POST   /drinks               needs post:drinks
	PATCH  /drinks/{drink_id}    needs patch:drinks
	DELETE /drinks/{drink_id}    needs delete:drinks

Create and update take a JSON body with a title and a recipe. The recipe is
a list of ingredients, a single ingredient object is accepted as well:

	{
	  "title": "espresso",
	  "recipe": [{"name": "coffee", "color": "brown", "parts": 1}]
	}

The short representation omits the ingredient names. Successful responses
carry "success": true, the list routes and create and update a "drinks" array,
delete the id of the deleted drink:

	{"success": true, "delete": 1}

Failures are reported as

	{"success": false, "error": 404, "message": "resource not found"}

with error 404, 405, 422 or 500 and the matching HTTP status. Authentication
and authorization faults are always sent with HTTP status 401. Their "error"
field carries the status of the fault (401, 400 or 403) and "message" is an
object with a code and a description:

	{"success": false, "error": 403, "message": {"code": "unauthorized", "description": "Permission not found."}}

Every response carries permissive CORS headers, OPTIONS preflight requests are
answered with 204 No Content.

# Notifications

A Notifier passed to the Builder receives every successful create, update and
delete with the long representation of the drink as payload.
*/
package backend
