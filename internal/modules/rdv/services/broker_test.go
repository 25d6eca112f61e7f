package services

import (
	"testing"

	"cabinet-suite-core/internal/modules/rdv/dto"
)

func TestBrokerIsolatesCabinets(t *testing.T) {
	b := NewBroker()
	a, stopA := b.Subscribe("cab-a")
	other, stopOther := b.Subscribe("cab-b")
	defer stopOther()

	b.Publish("cab-a", dto.Evenement{Type: dto.EvenementCree, ID: "1"})

	if evt := <-a; evt.ID != "1" {
		t.Fatalf("événement inattendu: %+v", evt)
	}
	select {
	case evt := <-other:
		t.Fatalf("fuite vers un autre cabinet: %+v", evt)
	default:
	}

	stopA()
	stopA()
	if b.Abonnes("cab-a") != 0 {
		t.Fatalf("abonné non retiré")
	}
	if _, ok := <-a; ok {
		t.Fatal("canal non fermé")
	}
}

func TestBrokerPublishNeverBlocks(t *testing.T) {
	b := NewBroker()
	_, stop := b.Subscribe("cab-a")
	defer stop()

	for i := 0; i < tamponAbonne*3; i++ {
		b.Publish("cab-a", dto.Evenement{Type: dto.EvenementStatut})
	}
}
