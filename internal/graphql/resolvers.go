package graphql

import (
	"context"
	"fmt"
	"strconv"

	"snapfeed/internal/auth"
	"snapfeed/internal/models"
	"snapfeed/internal/service"

	"github.com/graphql-go/graphql"
)

// AuthService is the account surface the resolvers depend on.
type AuthService interface {
	Signup(ctx context.Context, in service.SignupInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
	GetProfile(ctx context.Context, id uint) (*models.User, error)
	UpdateStatus(ctx context.Context, userID uint, status string) (*models.User, error)
}

// FeedService is the feed surface the resolvers depend on.
type FeedService interface {
	ListPosts(ctx context.Context, page int) (*service.FeedPage, error)
	GetPost(ctx context.Context, id uint) (*models.Post, error)
	CreatePost(ctx context.Context, in service.CreatePostInput) (*models.Post, error)
	UpdatePost(ctx context.Context, in service.UpdatePostInput) (*models.Post, error)
	DeletePost(ctx context.Context, userID, postID uint) error
}

func (r *Resolver) resolveLogin(p graphql.ResolveParams) (interface{}, error) {
	email, _ := p.Args["email"].(string)
	password, _ := p.Args["password"].(string)

	result, err := r.auth.Login(p.Context, email, password)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"token":  result.Token,
		"userId": int(result.UserID),
	}, nil
}

func (r *Resolver) resolvePosts(p graphql.ResolveParams) (interface{}, error) {
	if _, err := auth.RequireAuthenticated(p.Context); err != nil {
		return nil, err
	}

	page := 1
	if v, ok := p.Args["page"].(int); ok {
		page = v
	}

	feedPage, err := r.feed.ListPosts(p.Context, page)
	if err != nil {
		return nil, err
	}

	posts := make([]interface{}, 0, len(feedPage.Posts))
	for i := range feedPage.Posts {
		posts = append(posts, postNode(&feedPage.Posts[i]))
	}
	return map[string]interface{}{
		"posts":      posts,
		"totalItems": int(feedPage.TotalItems),
	}, nil
}

func (r *Resolver) resolvePost(p graphql.ResolveParams) (interface{}, error) {
	id, err := parseID(p.Args["id"])
	if err != nil {
		return nil, err
	}
	post, err := r.feed.GetPost(p.Context, id)
	if err != nil {
		return nil, err
	}
	return postNode(post), nil
}

func (r *Resolver) resolveUser(p graphql.ResolveParams) (interface{}, error) {
	identity, err := auth.RequireAuthenticated(p.Context)
	if err != nil {
		return nil, err
	}
	user, err := r.auth.GetProfile(p.Context, identity.UserID)
	if err != nil {
		return nil, err
	}
	return userNode(user), nil
}

func (r *Resolver) resolveCreateUser(p graphql.ResolveParams) (interface{}, error) {
	input, _ := p.Args["userInput"].(map[string]interface{})
	email, _ := input["email"].(string)
	name, _ := input["name"].(string)
	password, _ := input["password"].(string)

	user, err := r.auth.Signup(p.Context, service.SignupInput{
		Email:    email,
		Name:     name,
		Password: password,
	})
	if err != nil {
		return nil, err
	}
	return shallowUserNode(user), nil
}

func (r *Resolver) resolveCreatePost(p graphql.ResolveParams) (interface{}, error) {
	identity, err := auth.RequireAuthenticated(p.Context)
	if err != nil {
		return nil, err
	}

	title, content, imageURL := postInputArgs(p.Args["postInput"])
	post, err := r.feed.CreatePost(p.Context, service.CreatePostInput{
		UserID:   identity.UserID,
		Title:    title,
		Content:  content,
		ImageURL: imageURL,
	})
	if err != nil {
		return nil, err
	}
	return postNode(post), nil
}

func (r *Resolver) resolveUpdatePost(p graphql.ResolveParams) (interface{}, error) {
	identity, err := auth.RequireAuthenticated(p.Context)
	if err != nil {
		return nil, err
	}
	id, err := parseID(p.Args["id"])
	if err != nil {
		return nil, err
	}

	title, content, imageURL := postInputArgs(p.Args["postInput"])
	post, err := r.feed.UpdatePost(p.Context, service.UpdatePostInput{
		UserID:   identity.UserID,
		PostID:   id,
		Title:    title,
		Content:  content,
		ImageURL: imageURL,
	})
	if err != nil {
		return nil, err
	}
	return postNode(post), nil
}

func (r *Resolver) resolveDeletePost(p graphql.ResolveParams) (interface{}, error) {
	identity, err := auth.RequireAuthenticated(p.Context)
	if err != nil {
		return nil, err
	}
	id, err := parseID(p.Args["id"])
	if err != nil {
		return nil, err
	}
	if err := r.feed.DeletePost(p.Context, identity.UserID, id); err != nil {
		return nil, err
	}
	return true, nil
}

func (r *Resolver) resolveUpdateStatus(p graphql.ResolveParams) (interface{}, error) {
	identity, err := auth.RequireAuthenticated(p.Context)
	if err != nil {
		return nil, err
	}
	status, _ := p.Args["status"].(string)

	user, err := r.auth.UpdateStatus(p.Context, identity.UserID, status)
	if err != nil {
		return nil, err
	}
	return shallowUserNode(user), nil
}

func postInputArgs(v interface{}) (title, content, imageURL string) {
	input, _ := v.(map[string]interface{})
	title, _ = input["title"].(string)
	content, _ = input["content"].(string)
	imageURL, _ = input["imageUrl"].(string)
	return title, content, imageURL
}

// parseID accepts the string and int renderings the ID scalar produces.
func parseID(v interface{}) (uint, error) {
	switch value := v.(type) {
	case string:
		id, err := strconv.ParseUint(value, 10, 32)
		if err != nil || id == 0 {
			return 0, models.NewValidationError(fmt.Sprintf("Invalid id %q", value))
		}
		return uint(id), nil
	case int:
		if value <= 0 {
			return 0, models.NewValidationError(fmt.Sprintf("Invalid id %d", value))
		}
		return uint(value), nil
	default:
		return 0, models.NewValidationError("Invalid id")
	}
}
