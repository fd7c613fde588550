package server

import "github.com/nadwiabd/insight-edms/internal/navigation"

var (
	linkHome = navigation.Link{
		Text: "Home",
		View: viewHome,
		Icon: "house",
	}
	linkUserDetails = navigation.Link{
		Text: "User details",
		View: viewUserDetails,
		Icon: "vcard",
	}
	linkUserEdit = navigation.Link{
		Text: "Edit details",
		View: viewUserEdit,
		Icon: "vcard_edit",
	}
	linkPasswordChange = navigation.Link{
		Text: "Change password",
		View: viewPasswordChange,
		Icon: "computer_key",
	}
	linkAbout = navigation.Link{
		Text: "About",
		View: viewAbout,
		Icon: "information",
	}
	linkLicense = navigation.Link{
		Text: "License",
		View: viewLicense,
		Icon: "script",
	}
)

// RegisterLinks adds the menus of the account and information pages
func RegisterLinks(r *navigation.Registry) {
	r.RegisterLinks(
		[]string{viewUserDetails, viewUserEdit, viewPasswordChange},
		[]navigation.Link{linkUserDetails, linkUserEdit, linkPasswordChange},
		navigation.SecondaryMenu,
	)
	r.RegisterLinks(
		[]string{viewAbout, viewLicense},
		[]navigation.Link{linkAbout, linkLicense},
		navigation.SecondaryMenu,
	)
	r.RegisterTopMenu("home", linkHome)
	r.RegisterTopMenu("account", linkUserDetails)
	r.RegisterTopMenuAt("about", linkAbout, -1)
}
