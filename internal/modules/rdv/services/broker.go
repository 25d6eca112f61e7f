package services

import (
	"sync"

	"cabinet-suite-core/internal/modules/rdv/dto"
)

const tamponAbonne = 16

// Broker diffuse les changements d'agenda aux écrans connectés d'un même cabinet
type Broker struct {
	mu      sync.RWMutex
	abonnes map[string]map[chan dto.Evenement]struct{}
}

func NewBroker() *Broker {
	return &Broker{abonnes: make(map[string]map[chan dto.Evenement]struct{})}
}

// Subscribe enregistre un écran; la fonction retournée le désinscrit et ferme le canal
func (b *Broker) Subscribe(cabinetID string) (<-chan dto.Evenement, func()) {
	ch := make(chan dto.Evenement, tamponAbonne)

	b.mu.Lock()
	if b.abonnes[cabinetID] == nil {
		b.abonnes[cabinetID] = make(map[chan dto.Evenement]struct{})
	}
	b.abonnes[cabinetID][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.abonnes[cabinetID], ch)
			if len(b.abonnes[cabinetID]) == 0 {
				delete(b.abonnes, cabinetID)
			}
			close(ch)
		})
	}
}

// Publish n'attend jamais: un écran dont le tampon est plein perd l'événement
func (b *Broker) Publish(cabinetID string, evt dto.Evenement) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.abonnes[cabinetID] {
		select {
		case ch <- evt:
		default:
		}
	}
}

// Abonnes nombre d'écrans connectés pour le cabinet
func (b *Broker) Abonnes(cabinetID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.abonnes[cabinetID])
}
