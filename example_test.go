package remnawizard_test

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aretw0/remnawizard"
	"github.com/aretw0/remnawizard/pkg/access"
	"github.com/aretw0/remnawizard/pkg/adapters/memory"
	"github.com/aretw0/remnawizard/pkg/domain"
)

// ExampleNew walks one operator through the whole wizard against a
// recording provisioner, the way a transport would.
func ExampleNew() {
	panel := memory.NewProvisioner()
	wiz, err := remnawizard.New(panel, remnawizard.WithAdmins(access.NewAllowList(42)))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	press := func(token string) domain.Reply {
		reply, err := wiz.Handle(ctx, domain.Envelope{UserID: 42, Token: token})
		if err != nil {
			log.Fatal(err)
		}
		return reply
	}
	answer := func(text string) domain.Reply {
		reply, err := wiz.Handle(ctx, domain.Envelope{UserID: 42, Text: text})
		if err != nil {
			log.Fatal(err)
		}
		return reply
	}

	press(domain.TokenBegin)
	press("username_manual")
	fmt.Println(answer("alice_01").Step)

	press("exp_3")
	press("exp_next")
	for range 5 { // email, telegram id, hwid, tag, description
		press(domain.TokenSkip)
	}
	press("tr_100")
	press("tr_next")
	press("str_WEEKLY")
	press("int_promo1")
	press("int_next")
	reply := press("ext_skip")
	fmt.Println(reply.Step)

	reply = press(domain.TokenConfirm)
	fmt.Println(strings.SplitN(reply.Prompt.Text, "\n", 2)[0])

	req := panel.Requests()[0]
	fmt.Println(req.Username, req.HWIDDeviceLimit, req.TrafficLimitBytes>>30, req.TrafficLimitStrategy, len(req.ActiveInternalSquads))
	// Output:
	// expire_select
	// confirm
	// ✅ User created!
	// alice_01 2 100 WEEK 1
}
