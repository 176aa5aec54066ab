package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func (b *Blog) List(w http.ResponseWriter, r *http.Request) {
	posts, err := b.store.ListPublishedPosts(r.Context())
	if err != nil {
		b.serverError(w, r, err)
		return
	}

	data := map[string]any{
		"Title": "Posts",
		"Posts": posts,
	}
	b.render(w, r, http.StatusOK, "list.html", data)
}

// Detail shows any post by slug, drafts included.
func (b *Blog) Detail(w http.ResponseWriter, r *http.Request) {
	post, err := b.store.PostBySlug(r.Context(), chi.URLParam(r, "slug"))
	if errors.Is(err, ErrNotFound) {
		b.notFound(w)
		return
	}
	if err != nil {
		b.serverError(w, r, err)
		return
	}

	data := map[string]any{
		"Title":     post.Title,
		"Post":      post,
		"CanDelete": canDelete(userFromCtx(r.Context()), post),
	}
	b.render(w, r, http.StatusOK, "detail.html", data)
}

func (b *Blog) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		b.renderPostForm(w, r, http.StatusOK, PostForm{}, FieldErrors{})
		return
	}

	if !parseFormWithCSRF(w, r) {
		return
	}

	form := newPostForm(r)
	post, err := form.Validate(r.Context(), b.store)
	var errs FieldErrors
	if errors.As(err, &errs) {
		b.renderPostForm(w, r, http.StatusBadRequest, form, errs)
		return
	}
	if err != nil {
		b.serverError(w, r, err)
		return
	}

	user := userFromCtx(r.Context())
	post.AuthorID = user.ID

	err = b.store.InsertPost(r.Context(), post)
	if errors.Is(err, ErrDuplicateSlug) {
		b.renderPostForm(w, r, http.StatusBadRequest, form, FieldErrors{"slug": {duplicateSlugMessage}})
		return
	}
	if err != nil {
		b.serverError(w, r, err)
		return
	}

	b.logger.Info().
		Int64("post_id", post.ID).
		Str("slug", post.Slug).
		Str("author", user.Username).
		Bool("published", post.IsPublished).
		Msg("post created")

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (b *Blog) renderPostForm(w http.ResponseWriter, r *http.Request, status int, form PostForm, errs FieldErrors) {
	data := map[string]any{
		"Title":  "New post",
		"Form":   form,
		"Errors": errs,
	}
	b.render(w, r, status, "post_form.html", data)
}

// Delete confirms on GET and removes the post on POST. Only the author or a
// superuser gets past the permission check.
func (b *Blog) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost && !parseFormWithCSRF(w, r) {
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		b.notFound(w)
		return
	}

	post, err := b.store.PostByID(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		b.notFound(w)
		return
	}
	if err != nil {
		b.serverError(w, r, err)
		return
	}

	user := userFromCtx(r.Context())
	if d := deleteDecision(user, post); !d.allowed {
		event := b.logger.Warn().Int64("post_id", post.ID)
		if user != nil {
			event = event.Int64("user_id", user.ID)
		}
		event.Stringer("reason", d.reason).Msg("delete denied")
		b.forbidden(w, d.reason)
		return
	}

	if r.Method == http.MethodGet {
		data := map[string]any{
			"Title": "Delete " + post.Title,
			"Post":  post,
		}
		b.render(w, r, http.StatusOK, "post_confirm_delete.html", data)
		return
	}

	err = b.store.DeletePost(r.Context(), post.ID)
	if errors.Is(err, ErrNotFound) {
		b.notFound(w)
		return
	}
	if err != nil {
		b.serverError(w, r, err)
		return
	}

	b.logger.Info().
		Int64("post_id", post.ID).
		Str("slug", post.Slug).
		Str("by", user.Username).
		Msg("post deleted")

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Signup creates an account and sends the visitor to log in. It does not
// start a session.
func (b *Blog) Signup(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		b.renderSignupForm(w, r, http.StatusOK, SignupForm{}, FieldErrors{})
		return
	}

	if !parseFormWithCSRF(w, r) {
		return
	}

	form := newSignupForm(r)
	user, err := form.Validate(r.Context(), b.store)
	var errs FieldErrors
	if errors.As(err, &errs) {
		b.renderSignupForm(w, r, http.StatusBadRequest, form, errs)
		return
	}
	if err != nil {
		b.serverError(w, r, err)
		return
	}

	err = b.store.CreateUser(r.Context(), user)
	if errors.Is(err, ErrDuplicateUsername) {
		b.renderSignupForm(w, r, http.StatusBadRequest, form, FieldErrors{"username": {duplicateUsernameMessage}})
		return
	}
	if err != nil {
		b.serverError(w, r, err)
		return
	}

	b.logger.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("user signed up")

	http.Redirect(w, r, loginURL, http.StatusSeeOther)
}

func (b *Blog) renderSignupForm(w http.ResponseWriter, r *http.Request, status int, form SignupForm, errs FieldErrors) {
	data := map[string]any{
		"Title":    "Sign up",
		"Username": form.Username,
		"Errors":   errs,
	}
	b.render(w, r, status, "signup.html", data)
}

func (b *Blog) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		b.renderLoginForm(w, r, http.StatusOK, "", r.URL.Query().Get("next"), FieldErrors{})
		return
	}

	if !parseFormWithCSRF(w, r) {
		return
	}

	form := newLoginForm(r)
	next := r.PostFormValue("next")

	user, err := form.Authenticate(r.Context(), b.store)
	var errs FieldErrors
	if errors.As(err, &errs) {
		b.logger.Warn().Str("username", form.Username).Msg("failed login")
		b.renderLoginForm(w, r, http.StatusBadRequest, form.Username, next, errs)
		return
	}
	if err != nil {
		b.serverError(w, r, err)
		return
	}

	session, err := newSession(user.ID)
	if err != nil {
		b.serverError(w, r, err)
		return
	}
	if err := b.store.CreateSession(r.Context(), session); err != nil {
		b.serverError(w, r, err)
		return
	}

	b.setSessionCookie(w, session.Token)
	b.logger.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("user logged in")

	http.Redirect(w, r, safeNext(next), http.StatusSeeOther)
}

func (b *Blog) renderLoginForm(w http.ResponseWriter, r *http.Request, status int, username, next string, errs FieldErrors) {
	data := map[string]any{
		"Title":    "Log in",
		"Username": username,
		"Next":     next,
		"Errors":   errs,
	}
	b.render(w, r, status, "login.html", data)
}

func (b *Blog) Logout(w http.ResponseWriter, r *http.Request) {
	if !parseFormWithCSRF(w, r) {
		return
	}

	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if err := b.store.DeleteSession(r.Context(), cookie.Value); err != nil {
			b.serverError(w, r, err)
			return
		}
	}

	b.clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
