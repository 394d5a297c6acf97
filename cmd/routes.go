package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"
)

func (app *application) JWTMiddlewareWithRole(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return app.JWTMiddleware(next, requiredRole)
	}
}

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders, makeResponseJSON)
	authMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole("client"))
	adminAuthMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole("admin"))

	mux := pat.New()

	// Users
	mux.Post("/user/sign_up", standardMiddleware.ThenFunc(app.userHandler.SignUp))
	mux.Post("/user/sign_in", standardMiddleware.ThenFunc(app.userHandler.SignIn))
	mux.Get("/user/:id", authMiddleware.ThenFunc(app.userHandler.GetUserByID))
	mux.Post("/user/fcm_token", authMiddleware.ThenFunc(app.userHandler.UpdateFCMToken))

	// Listings
	mux.Post("/listings", authMiddleware.ThenFunc(app.listingHandler.CreateListing))
	mux.Put("/listings/:id", authMiddleware.ThenFunc(app.listingHandler.UpdateListing))
	mux.Del("/listings/:id", authMiddleware.ThenFunc(app.listingHandler.DeleteListing))
	mux.Get("/listings/feed/:bucket", standardMiddleware.ThenFunc(app.listingHandler.GetFeedBucket))
	mux.Post("/listings/filtered", standardMiddleware.ThenFunc(app.listingHandler.GetFilteredListings))
	mux.Get("/listings/user/:user_id", authMiddleware.ThenFunc(app.listingHandler.GetListingsByUserID))
	mux.Get("/listings/:id/contact", authMiddleware.ThenFunc(app.listingHandler.ContactSeller))
	mux.Post("/listings/:id/sold", authMiddleware.ThenFunc(app.listingHandler.MarkSold))
	mux.Post("/listings/:id/hide", authMiddleware.ThenFunc(app.listingHandler.HideListing))
	mux.Post("/listings/:id/extend", authMiddleware.ThenFunc(app.listingHandler.ExtendListing))
	mux.Get("/listings/:id", standardMiddleware.ThenFunc(app.listingHandler.GetListingByID))

	// Reviews
	mux.Post("/review", authMiddleware.ThenFunc(app.reviewHandler.CreateReview))
	mux.Get("/review/listing/:listing_id", standardMiddleware.ThenFunc(app.reviewHandler.GetReviewsByListingID))
	mux.Put("/review/:id", authMiddleware.ThenFunc(app.reviewHandler.UpdateReview))
	mux.Del("/review/:id", authMiddleware.ThenFunc(app.reviewHandler.DeleteReview))

	// Favorites
	mux.Post("/favorites/:listing_id", authMiddleware.ThenFunc(app.favoriteHandler.AddToFavorites))
	mux.Del("/favorites/:listing_id", authMiddleware.ThenFunc(app.favoriteHandler.RemoveFromFavorites))
	mux.Get("/favorites/check/:listing_id", authMiddleware.ThenFunc(app.favoriteHandler.IsFavorite))
	mux.Get("/favorites", authMiddleware.ThenFunc(app.favoriteHandler.GetFavoritesByUser))

	// Chat
	mux.Get("/ws", standardMiddleware.ThenFunc(app.WebSocketHandler))
	mux.Post("/api/chats", authMiddleware.ThenFunc(app.chatHandler.OpenChat))
	mux.Get("/api/chats/:id", authMiddleware.ThenFunc(app.chatHandler.GetChatByID))
	mux.Get("/api/chats", authMiddleware.ThenFunc(app.chatHandler.GetChats))
	mux.Del("/api/chats/:id", authMiddleware.ThenFunc(app.chatHandler.DeleteChat))

	mux.Post("/api/messages", authMiddleware.ThenFunc(app.messageHandler.SendMessage))
	mux.Get("/api/messages/:chat_id", authMiddleware.ThenFunc(app.messageHandler.GetMessagesForChat))
	mux.Del("/api/messages/:message_id", authMiddleware.ThenFunc(app.messageHandler.DeleteMessage))

	// Stories
	mux.Post("/stories", authMiddleware.ThenFunc(app.storyHandler.CreateStory))
	mux.Get("/stories", standardMiddleware.ThenFunc(app.storyHandler.GetActiveStories))
	mux.Del("/stories/:id", authMiddleware.ThenFunc(app.storyHandler.DeleteStory))

	// Complaints
	mux.Post("/complaints", authMiddleware.ThenFunc(app.complaintHandler.CreateComplaint))
	mux.Get("/complaints", adminAuthMiddleware.ThenFunc(app.complaintHandler.GetOpenComplaints))
	mux.Post("/complaints/:id/resolve", adminAuthMiddleware.ThenFunc(app.complaintHandler.ResolveComplaint))

	// Static placeholders
	mux.Get("/static/placeholders/", http.StripPrefix("/static/placeholders/", http.FileServer(http.Dir("./static/placeholders"))))

	return standardMiddleware.Then(mux)
}
