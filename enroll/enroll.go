/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

// Package enroll implements the bot auto-enrollment sequence the Router
// triggers when a bot's query result carries errno='103' (permission
// denied), per spec §4.5. It is grounded on
// _examples/original_source/bumper/xmppserver.py's corresponding branch in
// dataReceived, re-expressed as three synthesized <iq> stanzas built
// through this module's own xmpp element tree instead of string
// formatting, with google/uuid minting the fresh stanza ids (the teacher's
// go.mod carries both google/uuid and pborman/uuid; this package takes the
// google/uuid half of that split, matching SPEC_FULL.md §4.5).
package enroll

import (
	"strings"

	"github.com/google/uuid"

	"github.com/mm060488/bumper/xmpp"
)

// Target is the Session-side contract enrollment delivers synthesized
// stanzas onto — satisfied by the same Peer the Router already holds for
// the reporting bot.
type Target interface {
	Deliver(elem xmpp.XElement)
}

const adminDeniedPrefix = "permission denied, please contact "

// Errno103 inspects a bot's forwarded query stanza and, unless skipped per
// spec §4.5, synthesizes the AddUser/SetAC/GetUserInfo triple onto bot.
//
// ctlTo is the destination ("to") of the original controller query the bot
// was responding to — the candidate new user. ctlErr and ctlAdmin are the
// "error" and "admin" attributes found on the bot's <ctl> child, used (in
// that priority order) to recover the administrator identity the
// synthesized stanzas are sent "from". useAuth mirrors the server's
// use_auth configuration flag.
func Errno103(bot Target, botJID, ctlTo, ctlErr, ctlAdmin string, useAuth bool) {
	if len(ctlTo) == 0 {
		return
	}
	adminuser := adminUser(ctlErr, ctlAdmin)
	if len(adminuser) == 0 {
		return
	}
	newuser := strings.SplitN(ctlTo, "/", 2)[0]
	if strings.HasPrefix(newuser, "fuid_") || strings.HasPrefix(newuser, "fusername_") || useAuth {
		return
	}

	bot.Deliver(addUserIQ(adminuser, botJID, newuser))
	bot.Deliver(setACIQ(adminuser, botJID, newuser))
	bot.Deliver(getUserInfoIQ(adminuser, botJID))
}

// adminUser recovers the administrator identity per spec §4.5: first from
// the "permission denied, please contact …" error string, falling back to
// the <ctl admin="…"> attribute.
func adminUser(ctlErr, ctlAdmin string) string {
	if strings.HasPrefix(ctlErr, adminDeniedPrefix) {
		admin := strings.TrimPrefix(ctlErr, adminDeniedPrefix)
		return strings.ReplaceAll(admin, " ", "")
	}
	return ctlAdmin
}

func addUserIQ(from, to, newuser string) *xmpp.IQ {
	iq := xmpp.NewIQType(uuid.New().String(), xmpp.SetType)
	iq.SetFrom(from)
	iq.SetTo(to)

	query := xmpp.NewElementNamespace("query", "com:ctl")
	ctl := xmpp.NewElementName("ctl")
	ctl.SetAttribute("td", "AddUser")
	ctl.SetAttribute("id", "0000")
	ctl.SetAttribute("jid", newuser)
	query.AppendElement(ctl)
	iq.AppendElement(query)
	return iq
}

func setACIQ(from, to, newuser string) *xmpp.IQ {
	iq := xmpp.NewIQType(uuid.New().String(), xmpp.SetType)
	iq.SetFrom(from)
	iq.SetTo(to)

	query := xmpp.NewElementNamespace("query", "com:ctl")
	ctl := xmpp.NewElementName("ctl")
	ctl.SetAttribute("td", "SetAC")
	ctl.SetAttribute("id", "1111")
	ctl.SetAttribute("jid", newuser)

	acs := xmpp.NewElementName("acs")
	for _, name := range []string{"userman", "setting", "clean"} {
		ac := xmpp.NewElementName("ac")
		ac.SetAttribute("name", name)
		ac.SetAttribute("allow", "1")
		acs.AppendElement(ac)
	}
	ctl.AppendElement(acs)
	query.AppendElement(ctl)
	iq.AppendElement(query)
	return iq
}

func getUserInfoIQ(from, to string) *xmpp.IQ {
	iq := xmpp.NewIQType(uuid.New().String(), xmpp.SetType)
	iq.SetFrom(from)
	iq.SetTo(to)

	query := xmpp.NewElementNamespace("query", "com:ctl")
	ctl := xmpp.NewElementName("ctl")
	ctl.SetAttribute("td", "GetUserInfo")
	ctl.SetAttribute("id", "4444")
	query.AppendElement(ctl)
	query.AppendElement(xmpp.NewElementName("UserInfos"))
	iq.AppendElement(query)
	return iq
}
