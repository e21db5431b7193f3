package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders, makeResponseJSON)
	authMiddleware := standardMiddleware.Append(app.JWTMiddleware)

	mux := pat.New()

	// Users
	mux.Post("/user/sign_up", standardMiddleware.ThenFunc(app.userHandler.SignUp))
	mux.Post("/user/sign_in", standardMiddleware.ThenFunc(app.userHandler.SignIn))
	mux.Get("/user", authMiddleware.ThenFunc(app.userHandler.GetProfile))
	mux.Put("/user", authMiddleware.ThenFunc(app.userHandler.UpdateProfile))

	// Listings. Fixed paths registered before /listing/:id so pat matches
	// them first.
	mux.Post("/listing", authMiddleware.ThenFunc(app.listingHandler.CreateListing))
	mux.Get("/listing/offers", standardMiddleware.ThenFunc(app.listingHandler.GetOffers))
	mux.Get("/listing/latest", standardMiddleware.ThenFunc(app.listingHandler.GetLatest))
	mux.Get("/listing/category/:type", standardMiddleware.ThenFunc(app.listingHandler.GetListingsByCategory))
	mux.Get("/listing/:id", standardMiddleware.ThenFunc(app.listingHandler.GetListingByID))
	mux.Put("/listing/:id", authMiddleware.ThenFunc(app.listingHandler.UpdateListing))
	mux.Del("/listing/:id", authMiddleware.ThenFunc(app.listingHandler.DeleteListing))

	// Upload progress stream
	mux.Get("/ws/progress", http.HandlerFunc(app.ProgressSocketHandler))

	return mux
}
