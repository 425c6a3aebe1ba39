package service

import (
	"fmt"

	config "github.com/crosspost-hq/crosspost/configs"
	"golang.org/x/oauth2"
)

const (
	PlatformTwitter   = "twitter"
	PlatformLinkedIn  = "linkedin"
	PlatformInstagram = "instagram"
	PlatformFacebook  = "facebook"
	PlatformTiktok    = "tiktok"
)

// PlatformConfig holds everything the flow engine and connect path need
// for one platform: the oauth2 client config plus the profile and
// revocation endpoints used around the grant itself.
type PlatformConfig struct {
	OAuth      oauth2.Config
	ProfileURL string
	RevokeURL  string
}

// NewPlatformRegistry builds the platform lookup table from static
// endpoints and the configured client credentials. Adding a platform
// means adding one entry here plus a publish adapter.
func NewPlatformRegistry(cfg config.Config) map[string]PlatformConfig {
	redirect := func(platform string) string {
		return fmt.Sprintf("%s/auth/callback/%s", cfg.AppOrigin, platform)
	}

	return map[string]PlatformConfig{
		PlatformTwitter: {
			OAuth: oauth2.Config{
				ClientID:     cfg.Twitter.ClientID,
				ClientSecret: cfg.Twitter.ClientSecret,
				RedirectURL:  redirect(PlatformTwitter),
				Scopes:       []string{"tweet.read", "tweet.write", "users.read", "offline.access"},
				Endpoint: oauth2.Endpoint{
					AuthURL:  "https://twitter.com/i/oauth2/authorize",
					TokenURL: "https://api.twitter.com/2/oauth2/token",
				},
			},
			ProfileURL: "https://api.twitter.com/2/users/me",
			RevokeURL:  "https://api.twitter.com/2/oauth2/revoke",
		},
		PlatformLinkedIn: {
			OAuth: oauth2.Config{
				ClientID:     cfg.LinkedIn.ClientID,
				ClientSecret: cfg.LinkedIn.ClientSecret,
				RedirectURL:  redirect(PlatformLinkedIn),
				Scopes:       []string{"r_liteprofile", "r_emailaddress", "w_member_social"},
				Endpoint: oauth2.Endpoint{
					AuthURL:  "https://www.linkedin.com/oauth/v2/authorization",
					TokenURL: "https://www.linkedin.com/oauth/v2/accessToken",
				},
			},
			ProfileURL: "https://api.linkedin.com/v2/me",
			RevokeURL:  "https://www.linkedin.com/oauth/v2/revoke",
		},
		PlatformInstagram: {
			OAuth: oauth2.Config{
				ClientID:     cfg.Instagram.ClientID,
				ClientSecret: cfg.Instagram.ClientSecret,
				RedirectURL:  redirect(PlatformInstagram),
				Scopes:       []string{"user_profile", "user_media"},
				Endpoint: oauth2.Endpoint{
					AuthURL:  "https://api.instagram.com/oauth/authorize",
					TokenURL: "https://api.instagram.com/oauth/access_token",
				},
			},
			ProfileURL: "https://graph.instagram.com/me?fields=id,username",
			RevokeURL:  "https://graph.facebook.com/v18.0/me/permissions",
		},
		PlatformFacebook: {
			OAuth: oauth2.Config{
				ClientID:     cfg.Facebook.ClientID,
				ClientSecret: cfg.Facebook.ClientSecret,
				RedirectURL:  redirect(PlatformFacebook),
				Scopes:       []string{"pages_show_list", "pages_read_engagement", "pages_manage_posts", "publish_to_groups"},
				Endpoint: oauth2.Endpoint{
					AuthURL:  "https://www.facebook.com/v18.0/dialog/oauth",
					TokenURL: "https://graph.facebook.com/v18.0/oauth/access_token",
				},
			},
			ProfileURL: "https://graph.facebook.com/v18.0/me",
			RevokeURL:  "https://graph.facebook.com/v18.0/me/permissions",
		},
		PlatformTiktok: {
			OAuth: oauth2.Config{
				ClientID:     cfg.Tiktok.ClientID,
				ClientSecret: cfg.Tiktok.ClientSecret,
				RedirectURL:  redirect(PlatformTiktok),
				Scopes:       []string{"user.info.basic", "video.upload", "video.publish"},
				Endpoint: oauth2.Endpoint{
					AuthURL:  "https://www.tiktok.com/v2/auth/authorize",
					TokenURL: "https://open.tiktokapis.com/v2/oauth/token/",
				},
			},
			ProfileURL: "https://open.tiktokapis.com/v2/user/info/?fields=open_id,display_name,username",
			RevokeURL:  "https://open.tiktokapis.com/v2/oauth/revoke/",
		},
	}
}
