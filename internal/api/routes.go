package api

import "net/http"

// Routes lists every method and route template the typed services call.
func Routes() [][2]string {
	return [][2]string{
		{http.MethodPost, loginPath},
		{http.MethodGet, "/admin/get/users"},
		{http.MethodPost, "/admin/add/user"},
		{http.MethodPut, "/admin/update/user/{id}"},
		{http.MethodDelete, "/admin/delete/user/{id}"},
		{http.MethodGet, "/admin/get/skills"},
		{http.MethodPost, "/skill/add"},
		{http.MethodPut, "/skill/update/{id}"},
		{http.MethodDelete, "/skill/delete/{id}"},
		{http.MethodGet, "/admin/get/subSkills"},
		{http.MethodPost, "/subskill/add"},
		{http.MethodPut, "/subskill/update/{id}"},
		{http.MethodDelete, "/subskill/delete/{id}"},
		{http.MethodGet, "/admin/get/reels"},
		{http.MethodPost, "/admin/upload/reel"},
		{http.MethodDelete, "/admin/delete/reel/{id}"},
		{http.MethodGet, catalogPath},
	}
}
