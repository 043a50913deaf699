// Package adminui implements the interactive storefront admin TUI using
// Bubble Tea. It renders snapshots of the session and collection stores and
// dispatches store operations from key handlers; it never mutates store
// state directly.
package adminui

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"shopkeeper/internal/model"
	"shopkeeper/internal/state"
)

// Stores bundles the three stores the UI drives.
type Stores struct {
	Session  *state.Session
	Products *state.Products
	Users    *state.Users
}

// screen represents the current screen in the admin UI.
type screen int

const (
	screenLogin screen = iota
	screenProducts
	screenUsers
	screenProductForm
	screenUserForm
)

// Model holds all UI state for the admin TUI.
type Model struct {
	stores Stores
	addr   string

	sc  screen
	err string

	sess  state.SessionView
	prods state.CollectionView[model.Product]
	users state.CollectionView[model.User]

	loginUser textinput.Model
	loginPass textinput.Model

	prodLst list.Model
	userLst list.Model

	// product form; editID 0 means create
	pEditID int64
	pTitle  textinput.Model
	pPrice  textinput.Model
	pDesc   textinput.Model
	pCat    textinput.Model
	pImage  textinput.Model

	// user form; editID 0 means create
	uEditID int64
	uName   textinput.Model
	uEmail  textinput.Model
	uPass   textinput.Model
	uFirst  textinput.Model
	uLast   textinput.Model
	uPhone  textinput.Model
}

// New constructs a UI model and initializes inputs and lists.
func New(stores Stores, addr string) Model {
	user := textinput.New()
	user.Placeholder = "username"
	user.Prompt = "Username: "
	user.Focus()
	pass := textinput.New()
	pass.Placeholder = "password"
	pass.EchoMode = textinput.EchoPassword
	pass.Prompt = "Password: "

	prodLst := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	prodLst.Title = "Products"
	userLst := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	userLst.Title = "Users"

	m := Model{
		stores:    stores,
		addr:      redactAddr(addr),
		sc:        screenLogin,
		loginUser: user,
		loginPass: pass,
		prodLst:   prodLst,
		userLst:   userLst,
	}

	m.pTitle = newInput("title", "Title: ")
	m.pPrice = newInput("9.99", "Price: ")
	m.pDesc = newInput("description", "Description: ")
	m.pCat = newInput(strings.Join(model.Categories, " | "), "Category: ")
	m.pImage = newInput(model.PlaceholderImage, "Image URL: ")

	m.uName = newInput("username", "Username: ")
	m.uEmail = newInput("user@example.com", "Email: ")
	m.uPass = newInput("password", "Password: ")
	m.uPass.EchoMode = textinput.EchoPassword
	m.uFirst = newInput("first name", "First name: ")
	m.uLast = newInput("last name", "Last name: ")
	m.uPhone = newInput("optional", "Phone: ")

	return m
}

func newInput(placeholder, prompt string) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.Prompt = prompt
	return in
}

// Init restores a persisted session before the first paint.
func (m Model) Init() tea.Cmd {
	return restoreCmd(m.stores)
}

// syncMsg tells the model to re-snapshot the stores after an operation.
type syncMsg struct{}

// restoredMsg carries the outcome of the startup session restore.
type restoredMsg struct{}

// Update routes messages based on UI state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.prodLst.SetSize(msg.Width-4, msg.Height-8)
		m.userLst.SetSize(msg.Width-4, msg.Height-8)
		return m, nil
	case restoredMsg:
		m = m.refresh()
		if m.sess.Authenticated {
			m.sc = screenProducts
			return m, fetchProductsCmd(m.stores)
		}
		return m, nil
	case syncMsg:
		m = m.refresh()
		if m.sc == screenLogin && m.sess.Authenticated {
			m.sc = screenProducts
			m.loginPass.SetValue("")
			return m, fetchProductsCmd(m.stores)
		}
		if m.sc != screenLogin && !m.sess.Authenticated {
			// Forced logout: the server rejected the token mid-session.
			m.sc = screenLogin
			m.loginUser.Focus()
		}
		return m, nil
	}

	switch m.sc {
	case screenLogin:
		return m.updateLogin(msg)
	case screenProducts:
		return m.updateProducts(msg)
	case screenUsers:
		return m.updateUsers(msg)
	case screenProductForm:
		return m.updateProductForm(msg)
	case screenUserForm:
		return m.updateUserForm(msg)
	default:
		return m, nil
	}
}

// refresh pulls fresh snapshots from the stores and rebuilds the lists.
func (m Model) refresh() Model {
	m.sess = m.stores.Session.Snapshot()
	m.prods = m.stores.Products.Snapshot()
	m.users = m.stores.Users.Snapshot()

	items := make([]list.Item, 0, len(m.prods.Items))
	for _, p := range m.prods.Items {
		items = append(items, productItem{p})
	}
	m.prodLst.SetItems(items)

	uitems := make([]list.Item, 0, len(m.users.Items))
	for _, u := range m.users.Items {
		uitems = append(uitems, userItem(u))
	}
	m.userLst.SetItems(uitems)

	switch {
	case m.sess.Err != "":
		m.err = m.sess.Err
	case m.sc == screenUsers && m.users.Err != "":
		m.err = m.users.Err
	case m.prods.Err != "":
		m.err = m.prods.Err
	case m.users.Err != "":
		m.err = m.users.Err
	default:
		m.err = ""
	}
	return m
}

// View renders the current screen as a string.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString("Shopkeeper admin")
	if m.addr != "" {
		b.WriteString(" (" + m.addr + ")")
	}
	if m.sess.Authenticated {
		b.WriteString("  [" + m.sess.Username + "]")
	}
	b.WriteString("\n\n")

	switch m.sc {
	case screenLogin:
		b.WriteString("Login\n")
		b.WriteString(m.loginUser.View() + "\n")
		b.WriteString(m.loginPass.View() + "\n\n")
		b.WriteString("Enter=login  tab=next field  ctrl+c=quit\n")
	case screenProducts:
		b.WriteString(m.prodLst.View())
		b.WriteString("\n")
		if m.prods.Detail != nil {
			d := m.prods.Detail
			b.WriteString(fmt.Sprintf("Detail: #%d %s — $%.2f [%s]\n%s\n",
				d.ID, d.Title, d.Price, d.Category, d.Description))
		}
		b.WriteString("Keys: r=refresh n=new e=edit d=delete v=view tab=users o=logout q=quit\n")
	case screenUsers:
		b.WriteString(m.userLst.View())
		b.WriteString("\n")
		b.WriteString("Keys: r=refresh n=new e=edit d=delete tab=products o=logout q=quit\n")
	case screenProductForm:
		if m.pEditID == 0 {
			b.WriteString("Create product\n\n")
		} else {
			b.WriteString(fmt.Sprintf("Edit product #%d\n\n", m.pEditID))
		}
		b.WriteString(m.pTitle.View() + "\n")
		b.WriteString(m.pPrice.View() + "\n")
		b.WriteString(m.pDesc.View() + "\n")
		b.WriteString(m.pCat.View() + "\n")
		b.WriteString(m.pImage.View() + "\n\n")
		b.WriteString("Enter=save  tab=next field  esc=back\n")
	case screenUserForm:
		if m.uEditID == 0 {
			b.WriteString("Create user\n\n")
		} else {
			b.WriteString(fmt.Sprintf("Edit user #%d (empty password = unchanged)\n\n", m.uEditID))
		}
		b.WriteString(m.uName.View() + "\n")
		b.WriteString(m.uEmail.View() + "\n")
		b.WriteString(m.uPass.View() + "\n")
		b.WriteString(m.uFirst.View() + "\n")
		b.WriteString(m.uLast.View() + "\n")
		b.WriteString(m.uPhone.View() + "\n\n")
		b.WriteString("Enter=save  tab=next field  esc=back\n")
	}

	if m.busy() {
		b.WriteString("\nLoading...\n")
	}
	if m.err != "" {
		b.WriteString("\nError: " + m.err + "\n")
	}

	return b.String()
}

func (m Model) busy() bool {
	return m.sess.Status == state.StatusLoading ||
		m.prods.Status == state.StatusLoading ||
		m.users.Status == state.StatusLoading
}

type productItem struct{ p model.Product }

func (p productItem) Title() string { return p.p.Title }
func (p productItem) Description() string {
	return fmt.Sprintf("#%d  $%.2f  %s", p.p.ID, p.p.Price, p.p.Category)
}
func (p productItem) FilterValue() string { return p.p.Title }

type userItem model.User

func (u userItem) Title() string { return u.Username }
func (u userItem) Description() string {
	d := fmt.Sprintf("#%d  %s", u.ID, u.Email)
	if u.Name.Firstname != "" || u.Name.Lastname != "" {
		d += "  " + strings.TrimSpace(u.Name.Firstname+" "+u.Name.Lastname)
	}
	return d
}
func (u userItem) FilterValue() string { return u.Username }

// selectedProduct returns the currently highlighted product list entry.
func (m *Model) selectedProduct() (model.Product, bool) {
	if it, ok := m.prodLst.SelectedItem().(productItem); ok {
		return it.p, true
	}
	return model.Product{}, false
}

// selectedUser returns the currently highlighted user list entry.
func (m *Model) selectedUser() (model.User, bool) {
	if it, ok := m.userLst.SelectedItem().(userItem); ok {
		return model.User(it), true
	}
	return model.User{}, false
}

func restoreCmd(s Stores) tea.Cmd {
	return func() tea.Msg {
		_ = s.Session.Restore(context.Background())
		return restoredMsg{}
	}
}

func loginCmd(s Stores, username, password string) tea.Cmd {
	return func() tea.Msg {
		_ = s.Session.Login(context.Background(), username, password)
		return syncMsg{}
	}
}

func logoutCmd(s Stores) tea.Cmd {
	return func() tea.Msg {
		_ = s.Session.Logout(context.Background())
		return syncMsg{}
	}
}

func fetchProductsCmd(s Stores) tea.Cmd {
	return func() tea.Msg {
		_ = s.Products.FetchAll(context.Background())
		return syncMsg{}
	}
}

func fetchUsersCmd(s Stores) tea.Cmd {
	return func() tea.Msg {
		_ = s.Users.FetchAll(context.Background())
		return syncMsg{}
	}
}

func viewProductCmd(s Stores, id int64) tea.Cmd {
	return func() tea.Msg {
		_ = s.Products.FetchOne(context.Background(), id)
		return syncMsg{}
	}
}

func saveProductCmd(s Stores, id int64, p model.Product) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if id == 0 {
			_ = s.Products.Create(ctx, p)
		} else {
			_ = s.Products.Update(ctx, id, p)
		}
		return syncMsg{}
	}
}

func deleteProductCmd(s Stores, id int64) tea.Cmd {
	return func() tea.Msg {
		_ = s.Products.Delete(context.Background(), id)
		return syncMsg{}
	}
}

func saveUserCmd(s Stores, id int64, u model.User) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if id == 0 {
			_ = s.Users.Create(ctx, u)
		} else {
			_ = s.Users.Update(ctx, id, u)
		}
		return syncMsg{}
	}
}

func deleteUserCmd(s Stores, id int64) tea.Cmd {
	return func() tea.Msg {
		_ = s.Users.Delete(context.Background(), id)
		return syncMsg{}
	}
}

// updateLogin handles input on the login screen.
func (m Model) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "tab":
			if m.loginUser.Focused() {
				m.loginUser.Blur()
				m.loginPass.Focus()
			} else {
				m.loginPass.Blur()
				m.loginUser.Focus()
			}
			return m, nil
		case "enter":
			return m, loginCmd(m.stores, m.loginUser.Value(), m.loginPass.Value())
		}
	}
	var cmd tea.Cmd
	if m.loginUser.Focused() {
		m.loginUser, cmd = m.loginUser.Update(msg)
	} else {
		m.loginPass, cmd = m.loginPass.Update(msg)
	}
	return m, cmd
}

// updateProducts handles input on the catalog screen.
func (m Model) updateProducts(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.prodLst, cmd = m.prodLst.Update(msg)
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.sc = screenUsers
			return m, fetchUsersCmd(m.stores)
		case "o":
			return m, logoutCmd(m.stores)
		case "r":
			return m, fetchProductsCmd(m.stores)
		case "v":
			p, ok := m.selectedProduct()
			if !ok {
				return m, nil
			}
			return m, viewProductCmd(m.stores, p.ID)
		case "esc":
			m.stores.Products.ClearDetail()
			return m, func() tea.Msg { return syncMsg{} }
		case "n":
			m.pEditID = 0
			m.err = ""
			m.setProductForm(model.Product{Image: model.PlaceholderImage})
			m.sc = screenProductForm
			return m, nil
		case "e":
			p, ok := m.selectedProduct()
			if !ok {
				return m, nil
			}
			m.stores.Products.Select(p)
			m.pEditID = p.ID
			m.err = ""
			m.setProductForm(p)
			m.sc = screenProductForm
			return m, nil
		case "d":
			p, ok := m.selectedProduct()
			if !ok {
				return m, nil
			}
			return m, deleteProductCmd(m.stores, p.ID)
		}
	}
	return m, cmd
}

// updateUsers handles input on the directory screen.
func (m Model) updateUsers(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.userLst, cmd = m.userLst.Update(msg)
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.sc = screenProducts
			return m, fetchProductsCmd(m.stores)
		case "o":
			return m, logoutCmd(m.stores)
		case "r":
			return m, fetchUsersCmd(m.stores)
		case "n":
			m.uEditID = 0
			m.err = ""
			m.setUserForm(model.User{})
			m.sc = screenUserForm
			return m, nil
		case "e":
			u, ok := m.selectedUser()
			if !ok {
				return m, nil
			}
			m.stores.Users.Select(u)
			m.uEditID = u.ID
			m.err = ""
			m.setUserForm(u)
			m.sc = screenUserForm
			return m, nil
		case "d":
			u, ok := m.selectedUser()
			if !ok {
				return m, nil
			}
			return m, deleteUserCmd(m.stores, u.ID)
		}
	}
	return m, cmd
}

func (m *Model) setProductForm(p model.Product) {
	m.pTitle.SetValue(p.Title)
	if p.Price > 0 {
		m.pPrice.SetValue(strconv.FormatFloat(p.Price, 'f', -1, 64))
	} else {
		m.pPrice.SetValue("")
	}
	m.pDesc.SetValue(p.Description)
	m.pCat.SetValue(p.Category)
	m.pImage.SetValue(p.Image)
	m.blurProductForm()
	m.pTitle.Focus()
}

func (m *Model) blurProductForm() {
	m.pTitle.Blur()
	m.pPrice.Blur()
	m.pDesc.Blur()
	m.pCat.Blur()
	m.pImage.Blur()
}

func (m *Model) setUserForm(u model.User) {
	m.uName.SetValue(u.Username)
	m.uEmail.SetValue(u.Email)
	m.uPass.SetValue("")
	m.uFirst.SetValue(u.Name.Firstname)
	m.uLast.SetValue(u.Name.Lastname)
	m.uPhone.SetValue(u.Phone)
	m.blurUserForm()
	m.uName.Focus()
}

func (m *Model) blurUserForm() {
	m.uName.Blur()
	m.uEmail.Blur()
	m.uPass.Blur()
	m.uFirst.Blur()
	m.uLast.Blur()
	m.uPhone.Blur()
}

// updateProductForm handles input while creating or editing a product.
func (m Model) updateProductForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc":
			m.sc = screenProducts
			m.stores.Products.ClearSelected()
			return m, fetchProductsCmd(m.stores)
		case "enter":
			price, err := strconv.ParseFloat(strings.TrimSpace(m.pPrice.Value()), 64)
			if err != nil {
				m.err = "price must be a number"
				return m, nil
			}
			p := model.Product{
				Title:       strings.TrimSpace(m.pTitle.Value()),
				Price:       price,
				Description: strings.TrimSpace(m.pDesc.Value()),
				Category:    strings.TrimSpace(m.pCat.Value()),
				Image:       strings.TrimSpace(m.pImage.Value()),
			}
			if p.Image == "" {
				p.Image = model.PlaceholderImage
			}
			if err := model.ValidateProduct(p); err != nil {
				m.err = err.Error()
				return m, nil
			}
			id := m.pEditID
			m.sc = screenProducts
			m.stores.Products.ClearSelected()
			return m, saveProductCmd(m.stores, id, p)
		case "tab":
			m.cycleProductFocus()
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch {
	case m.pTitle.Focused():
		m.pTitle, cmd = m.pTitle.Update(msg)
	case m.pPrice.Focused():
		m.pPrice, cmd = m.pPrice.Update(msg)
	case m.pDesc.Focused():
		m.pDesc, cmd = m.pDesc.Update(msg)
	case m.pCat.Focused():
		m.pCat, cmd = m.pCat.Update(msg)
	default:
		m.pImage, cmd = m.pImage.Update(msg)
	}
	return m, cmd
}

func (m *Model) cycleProductFocus() {
	order := []*textinput.Model{&m.pTitle, &m.pPrice, &m.pDesc, &m.pCat, &m.pImage}
	for i, in := range order {
		if in.Focused() {
			in.Blur()
			order[(i+1)%len(order)].Focus()
			return
		}
	}
	order[0].Focus()
}

// updateUserForm handles input while creating or editing a user.
func (m Model) updateUserForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc":
			m.sc = screenUsers
			m.stores.Users.ClearSelected()
			return m, fetchUsersCmd(m.stores)
		case "enter":
			u := model.User{
				Username: strings.TrimSpace(m.uName.Value()),
				Email:    strings.TrimSpace(m.uEmail.Value()),
				Password: m.uPass.Value(),
				Phone:    strings.TrimSpace(m.uPhone.Value()),
			}
			u.Name.Firstname = strings.TrimSpace(m.uFirst.Value())
			u.Name.Lastname = strings.TrimSpace(m.uLast.Value())

			var verr error
			if m.uEditID == 0 {
				verr = model.ValidateNewUser(u)
			} else {
				verr = model.ValidateUserPatch(u)
			}
			if verr != nil {
				m.err = verr.Error()
				return m, nil
			}
			id := m.uEditID
			m.sc = screenUsers
			m.stores.Users.ClearSelected()
			return m, saveUserCmd(m.stores, id, u)
		case "tab":
			m.cycleUserFocus()
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch {
	case m.uName.Focused():
		m.uName, cmd = m.uName.Update(msg)
	case m.uEmail.Focused():
		m.uEmail, cmd = m.uEmail.Update(msg)
	case m.uPass.Focused():
		m.uPass, cmd = m.uPass.Update(msg)
	case m.uFirst.Focused():
		m.uFirst, cmd = m.uFirst.Update(msg)
	case m.uLast.Focused():
		m.uLast, cmd = m.uLast.Update(msg)
	default:
		m.uPhone, cmd = m.uPhone.Update(msg)
	}
	return m, cmd
}

func (m *Model) cycleUserFocus() {
	order := []*textinput.Model{&m.uName, &m.uEmail, &m.uPass, &m.uFirst, &m.uLast, &m.uPhone}
	for i, in := range order {
		if in.Focused() {
			in.Blur()
			order[(i+1)%len(order)].Focus()
			return
		}
	}
	order[0].Focus()
}

func redactAddr(addr string) string {
	u, err := url.Parse(addr)
	if err != nil {
		return ""
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	return u.Scheme + "://" + u.Host
}
