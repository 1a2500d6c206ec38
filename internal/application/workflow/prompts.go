package workflow

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/fieldops-api/internal/application/connection"
	"github.com/jhoicas/fieldops-api/internal/domain/entity"
)

func (m *Machine) promptSelectType() Prompt {
	return Prompt{
		State: StateSelectType,
		Text:  "Nueva instalación.\n¿Qué tipo de conexión es?",
		Options: []Option{
			{ID: "type:" + entity.ConnectionTypeMDU, Label: entity.ConnectionTypeLabels[entity.ConnectionTypeMDU]},
			{ID: "type:" + entity.ConnectionTypePrivate, Label: entity.ConnectionTypeLabels[entity.ConnectionTypePrivate]},
			{ID: "type:" + entity.ConnectionTypeBusiness, Label: entity.ConnectionTypeLabels[entity.ConnectionTypeBusiness]},
		},
	}
}

func (m *Machine) promptUploadPhotos(note string) Prompt {
	text := fmt.Sprintf("Subí las fotos del sitio (máximo %d).", m.deps.MaxPhotos)
	if note != "" {
		text = note
	}
	return Prompt{
		State:   StateUploadPhotos,
		Text:    text,
		Options: []Option{{ID: "continue", Label: "Continuar ➡️"}},
	}
}

func (m *Machine) promptEnterAddress() Prompt {
	return Prompt{State: StateEnterAddress, Text: "Ingresá la dirección de la instalación:"}
}

// promptSelectRouter ofrece exactamente los modelos con stock en la plantilla.
func (m *Machine) promptSelectRouter() (Prompt, error) {
	models, err := m.deps.Routers.ModelsInStock()
	if err != nil {
		return Prompt{}, err
	}
	opts := make([]Option, 0, len(models)+1)
	for _, model := range models {
		opts = append(opts, Option{ID: "model:" + model, Label: model})
	}
	opts = append(opts, Option{ID: "skip", Label: "Sin router ➖"})
	return Prompt{
		State:   StateSelectRouter,
		Text:    "¿Qué modelo de router se instaló?",
		Options: opts,
	}, nil
}

func (m *Machine) promptEnterRouterQuantity() Prompt {
	return Prompt{State: StateEnterRouterQuantity, Text: "¿Cuántos routers se instalaron?"}
}

func (m *Machine) promptRouterAccess() Prompt {
	return Prompt{
		State: StateRouterAccess,
		Text:  "¿Quedó configurado el acceso al router?",
		Options: []Option{
			{ID: "access:yes", Label: "Sí ✅"},
			{ID: "access:skip", Label: "Omitir ➖"},
		},
	}
}

func (m *Machine) promptEnterPort() Prompt {
	return Prompt{
		State:   StateEnterPort,
		Text:    "Ingresá el puerto de conexión:",
		Options: []Option{{ID: "skip", Label: "Omitir ➖"}},
	}
}

func (m *Machine) promptEnterFiber() Prompt {
	return Prompt{State: StateEnterFiber, Text: "¿Cuántos metros de fibra óptica se usaron?"}
}

func (m *Machine) promptEnterTwisted() Prompt {
	return Prompt{State: StateEnterTwisted, Text: "¿Cuántos metros de par trenzado se usaron?"}
}

func (m *Machine) promptContractSigned() Prompt {
	return Prompt{
		State:   StateContractSigned,
		Text:    "¿El contrato quedó firmado?",
		Options: []Option{{ID: "contract:signed", Label: "Firmado ✍️"}},
	}
}

func (m *Machine) promptSelectCrew(note string) Prompt {
	opts := make([]Option, 0, len(m.staff)+1)
	for _, emp := range m.staff {
		label := emp.FullName
		if m.draft.InCrew(emp.ID) {
			label = "✅ " + label
		}
		opts = append(opts, Option{ID: "crew:" + emp.ID, Label: label})
	}
	opts = append(opts, Option{ID: "done", Label: "Listo ➡️"})
	text := "¿Quiénes hicieron la instalación? Tocá para marcar o desmarcar."
	if note != "" {
		text = note
	}
	return Prompt{State: StateSelectCrew, Text: text, Options: opts}
}

func (m *Machine) promptSelectMaterialPayer() Prompt {
	opts := make([]Option, 0, len(m.matRes.Sufficient))
	for _, emp := range m.matRes.Sufficient {
		opts = append(opts, Option{
			ID: "payer:" + emp.ID,
			Label: fmt.Sprintf("%s (fibra %sm, par %sm)",
				emp.FullName, emp.FiberBalance.StringFixed(2), emp.TwistedPairBalance.StringFixed(2)),
		})
	}
	return Prompt{
		State:   StateSelectMaterialPayer,
		Text:    "Varios técnicos tienen saldo suficiente. ¿De quién se descuenta el material?",
		Options: opts,
	}
}

func (m *Machine) promptSelectRouterPayer() Prompt {
	opts := make([]Option, 0, len(m.rtrRes.Sufficient))
	for _, c := range m.rtrRes.Sufficient {
		opts = append(opts, Option{
			ID:    "rpayer:" + c.Employee.ID,
			Label: fmt.Sprintf("%s (%d en stock)", c.Employee.FullName, c.Quantity),
		})
	}
	return Prompt{
		State:   StateSelectRouterPayer,
		Text:    fmt.Sprintf("Varios técnicos tienen el router %s. ¿De quién se descuenta?", m.draft.RouterModel),
		Options: opts,
	}
}

// shortageReport arma el mensaje de aborto cuando ningún integrante de la
// cuadrilla cubre los metros requeridos, con el saldo de cada uno a la vista.
func (m *Machine) shortageReport() string {
	var b strings.Builder
	b.WriteString("⛔ Ningún técnico de la cuadrilla tiene material suficiente.\n")
	fmt.Fprintf(&b, "Se necesitan: fibra %sm, par trenzado %sm.\n\nSaldos:\n",
		m.draft.FiberMeters.StringFixed(2), m.draft.TwistedPairMeters.StringFixed(2))
	for _, c := range m.matRes.Candidates {
		fmt.Fprintf(&b, "• %s: fibra %sm, par %sm\n",
			c.Employee.FullName, c.Employee.FiberBalance.StringFixed(2), c.Employee.TwistedPairBalance.StringFixed(2))
	}
	b.WriteString("\nLa instalación no fue registrada. Cargá material y volvé a empezar.")
	return b.String()
}

func (m *Machine) promptConfirm() Prompt {
	var b strings.Builder
	b.WriteString("Revisá los datos antes de confirmar:\n\n")
	fmt.Fprintf(&b, "Tipo: %s\n", entity.ConnectionTypeLabels[m.draft.Type])
	fmt.Fprintf(&b, "Dirección: %s\n", m.draft.Address)
	if m.draft.HasRouter() {
		fmt.Fprintf(&b, "Router: %s × %d", m.draft.RouterModel, m.draft.RouterQuantity)
		if m.draft.RouterAccess {
			b.WriteString(" (acceso configurado)")
		}
		b.WriteString("\n")
	} else {
		b.WriteString("Router: —\n")
	}
	if m.draft.Port != "" {
		fmt.Fprintf(&b, "Puerto: %s\n", m.draft.Port)
	} else {
		b.WriteString("Puerto: —\n")
	}
	fmt.Fprintf(&b, "Fibra óptica: %sm\n", m.draft.FiberMeters.StringFixed(2))
	fmt.Fprintf(&b, "Par trenzado: %sm\n", m.draft.TwistedPairMeters.StringFixed(2))
	fmt.Fprintf(&b, "Fotos: %d\n", len(m.draft.Photos))

	names := make([]string, 0, len(m.draft.CrewIDs))
	for _, id := range m.draft.CrewIDs {
		if emp := m.staffByID(id); emp != nil {
			names = append(names, emp.FullName)
		}
	}
	fmt.Fprintf(&b, "Cuadrilla: %s\n", strings.Join(names, ", "))

	if m.deps.Policy == connection.PolicySplitCrew {
		n := decimal.NewFromInt(int64(len(m.draft.CrewIDs)))
		fmt.Fprintf(&b, "Descuento por técnico: fibra %sm, par %sm\n",
			m.draft.FiberMeters.Div(n).Round(2).StringFixed(2),
			m.draft.TwistedPairMeters.Div(n).Round(2).StringFixed(2))
	} else if m.materialPayerID != nil {
		if emp := m.staffByID(*m.materialPayerID); emp != nil {
			fmt.Fprintf(&b, "Material a cargo de: %s\n", emp.FullName)
		}
	}
	if m.draft.HasRouter() {
		if m.routerPayerID != nil {
			if emp := m.staffByID(*m.routerPayerID); emp != nil {
				fmt.Fprintf(&b, "Router a cargo de: %s\n", emp.FullName)
			}
		} else {
			b.WriteString("Router: sin descuento de stock\n")
		}
	}

	b.WriteString("\n¿Registrar la instalación?")
	return Prompt{
		State: StateConfirm,
		Text:  b.String(),
		Options: []Option{
			{ID: "confirm:yes", Label: "Confirmar ✅"},
			{ID: "confirm:no", Label: "Cancelar ❌"},
		},
	}
}
