package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/moviex/internal/browse"
	"github.com/desertthunder/moviex/internal/catalog"
	"github.com/desertthunder/moviex/internal/formatter"
	"github.com/desertthunder/moviex/internal/models"
	"github.com/desertthunder/moviex/internal/services"
	"github.com/desertthunder/moviex/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	StartupView ViewState = iota
	ListView
	SearchView
	GenreView
	DetailsView
	WishlistView
	SyncView
)

// Catalog is the facade the TUI reads from. [catalog.Service] satisfies it.
type Catalog interface {
	catalog.Repository
	ForceSync(ctx context.Context, progress chan<- tasks.ProgressUpdate) models.Result[tasks.SyncReport]
}

// Model represents the TUI application state.
type Model struct {
	ctx  context.Context
	view ViewState
	prev ViewState
	repo Catalog

	startup  *browse.Startup
	movies   *browse.MovieList
	details  *browse.MovieDetails
	wishlist *browse.Wishlist

	width        int
	height       int
	movieList    list.Model
	wishlistList list.Model
	search       textinput.Model
	genreInput   textinput.Model
	genreMatches []string
	genreCursor  int
	loadingMore  bool

	progressChan chan tasks.ProgressUpdate
	syncDone     chan models.Result[tasks.SyncReport]
	progress     tasks.ProgressUpdate
	syncResult   *models.Result[tasks.SyncReport]

	err    error
	help   help.Model
	keys   keyMap
	logger *log.Logger
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, repo Catalog, checker services.ConnectivityChecker, pageSize int, logger *log.Logger) *Model {
	if logger == nil {
		logger = log.Default()
	}

	search := textinput.New()
	search.Placeholder = "Search titles"
	search.Prompt = "/ "

	genreInput := textinput.New()
	genreInput.Placeholder = "Filter genres"
	genreInput.Prompt = "g "

	return &Model{
		ctx:          ctx,
		view:         StartupView,
		repo:         repo,
		startup:      browse.NewStartup(repo, checker, logger),
		movies:       browse.NewMovieList(repo, pageSize, logger),
		details:      browse.NewMovieDetails(repo),
		wishlist:     browse.NewWishlist(repo),
		movieList:    newList("Movies"),
		wishlistList: newList("Wishlist"),
		search:       search,
		genreInput:   genreInput,
		help:         help.New(),
		keys:         newKeyMap(),
		logger:       logger,
	}
}

func newList(title string) list.Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	return l
}

// Init runs the launch check.
func (m *Model) Init() tea.Cmd {
	return m.checkStartup(false)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.movieList.SetSize(msg.Width-4, msg.Height-8)
		m.wishlistList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) && m.view != SearchView && m.view != GenreView {
			return m, tea.Quit
		}

		switch m.view {
		case StartupView:
			return m.handleStartupKeys(msg)
		case ListView:
			return m.handleListKeys(msg)
		case SearchView:
			return m.handleSearchKeys(msg)
		case GenreView:
			return m.handleGenreKeys(msg)
		case DetailsView:
			return m.handleDetailsKeys(msg)
		case WishlistView:
			return m.handleWishlistKeys(msg)
		case SyncView:
			return m.handleSyncKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgStartupChecked:
		st := msg.data.(browse.StartupState)
		if st.Synced {
			m.view = ListView
			m.loadingMore = true
			return m, m.initList()
		}
		return m, nil

	case MsgListUpdated:
		m.loadingMore = false
		m.setErr(msg.errOf())
		return m, m.refreshItems()

	case MsgDetailsLoaded:
		m.setErr(msg.errOf())
		return m, nil

	case MsgWishlistLoaded:
		m.setErr(msg.errOf())
		return m, m.wishlistList.SetItems(movieItems(m.wishlist.State().Movies, idSet(m.wishlist.State().Movies)))

	case MsgSyncProgress:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgSyncComplete:
		result := msg.data.(models.Result[tasks.SyncReport])
		m.syncResult = &result
		m.progressChan, m.syncDone = nil, nil
		if result.IsSuccess() {
			m.loadingMore = true
			return m, m.reloadList()
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) setErr(err error) {
	m.err = err
	if err != nil {
		m.logger.Warn("tui operation failed", "view", m.view, "err", err)
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case StartupView:
		return m.renderStartup()
	case ListView:
		return m.renderList()
	case SearchView:
		return m.renderSearch()
	case GenreView:
		return m.renderGenres()
	case DetailsView:
		return m.renderDetails()
	case WishlistView:
		return m.renderWishlist()
	case SyncView:
		return m.renderSync()
	default:
		return ""
	}
}

func (m *Model) handleStartupKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.startup.State()
	if key.Matches(msg, m.keys.refresh) && !st.Loading && (st.NoConnectivity || st.Err != nil) {
		return m, m.checkStartup(true)
	}
	return m, nil
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.movieList.SelectedItem().(movieItem); ok {
			return m, m.openDetails(item.movie.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.search):
		m.view = SearchView
		m.search.SetValue(m.movies.State().SearchQuery)
		m.search.CursorEnd()
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.genre):
		m.view = GenreView
		m.genreInput.SetValue("")
		m.genreMatches = filterGenres("", m.movies.State().Genres)
		m.genreCursor = 0
		return m, m.genreInput.Focus()
	case key.Matches(msg, m.keys.wishlist):
		if item, ok := m.movieList.SelectedItem().(movieItem); ok {
			return m, m.toggleListWishlist(item.movie.ID, !item.wishlisted)
		}
		return m, nil
	case key.Matches(msg, m.keys.tab):
		m.view = WishlistView
		return m, m.loadWishlist()
	case key.Matches(msg, m.keys.refresh):
		m.loadingMore = true
		return m, m.reloadList()
	case key.Matches(msg, m.keys.sync):
		return m, m.startSync()
	case key.Matches(msg, m.keys.back):
		if m.movies.State().HasFilter() {
			return m, m.clearFilters()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.movieList, cmd = m.movieList.Update(msg)
	return m, tea.Batch(cmd, m.maybeLoadMore())
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.search.Blur()
		m.view = ListView
		return m, nil
	case tea.KeyEnter:
		query := m.search.Value()
		m.search.Blur()
		m.view = ListView
		m.loadingMore = true
		return m, func() tea.Msg {
			return listUpdatedMsg(m.movies.SetSearchQuery(m.ctx, query))
		}
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m *Model) handleGenreKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.genreInput.Blur()
		m.view = ListView
		return m, nil
	case tea.KeyUp:
		if m.genreCursor > 0 {
			m.genreCursor--
		}
		return m, nil
	case tea.KeyDown:
		if m.genreCursor < len(m.genreMatches) {
			m.genreCursor++
		}
		return m, nil
	case tea.KeyEnter:
		var genre *string
		if m.genreCursor > 0 && m.genreCursor <= len(m.genreMatches) {
			g := m.genreMatches[m.genreCursor-1]
			genre = &g
		}
		m.genreInput.Blur()
		m.view = ListView
		m.loadingMore = true
		return m, func() tea.Msg {
			return listUpdatedMsg(m.movies.SetGenreFilter(m.ctx, genre))
		}
	}

	var cmd tea.Cmd
	m.genreInput, cmd = m.genreInput.Update(msg)
	m.genreMatches = filterGenres(m.genreInput.Value(), m.movies.State().Genres)
	// row 0 is "All genres"; land on the best match while typing
	m.genreCursor = min(1, len(m.genreMatches))
	if strings.TrimSpace(m.genreInput.Value()) == "" {
		m.genreCursor = 0
	}
	return m, cmd
}

func (m *Model) handleDetailsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.view = m.prev
		if m.view == WishlistView {
			return m, m.loadWishlist()
		}
		return m, m.refreshItems()
	case key.Matches(msg, m.keys.wishlist):
		st := m.details.State()
		if st.Movie == nil {
			return m, nil
		}
		id, flag := st.Movie.ID, !st.InWishlist
		return m, func() tea.Msg {
			if err := m.details.ToggleWishlist(m.ctx, id, flag); err != nil {
				return detailsLoadedMsg(err)
			}
			return detailsLoadedMsg(m.movies.LoadWishlist(m.ctx))
		}
	}
	return m, nil
}

func (m *Model) handleWishlistKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.tab):
		m.view = ListView
		return m, m.refreshItems()
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.wishlistList.SelectedItem().(movieItem); ok {
			return m, m.openDetails(item.movie.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.wishlist):
		item, ok := m.wishlistList.SelectedItem().(movieItem)
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			if err := m.wishlist.Toggle(m.ctx, item.movie.ID, false); err != nil {
				return wishlistLoadedMsg(err)
			}
			return wishlistLoadedMsg(m.movies.LoadWishlist(m.ctx))
		}
	}

	var cmd tea.Cmd
	m.wishlistList, cmd = m.wishlistList.Update(msg)
	return m, cmd
}

func (m *Model) handleSyncKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.syncResult != nil && (key.Matches(msg, m.keys.back) || key.Matches(msg, m.keys.enter)) {
		m.view = ListView
		m.syncResult = nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case ListView:
		m.movieList, cmd = m.movieList.Update(msg)
	case WishlistView:
		m.wishlistList, cmd = m.wishlistList.Update(msg)
	}
	return m, cmd
}

// maybeLoadMore requests the next page once the cursor sits on the last loaded row.
func (m *Model) maybeLoadMore() tea.Cmd {
	st := m.movies.State()
	if m.loadingMore || st.Loading || st.Exhausted {
		return nil
	}
	if n := len(m.movieList.Items()); n > 0 && m.movieList.Index() < n-1 {
		return nil
	}
	m.loadingMore = true
	return func() tea.Msg {
		return listUpdatedMsg(m.movies.LoadNextPage(m.ctx))
	}
}

func (m *Model) refreshItems() tea.Cmd {
	st := m.movies.State()
	return m.movieList.SetItems(movieItems(st.Movies, idSet(st.Wishlist)))
}

func (m *Model) checkStartup(retry bool) tea.Cmd {
	return func() tea.Msg {
		if retry {
			return startupCheckedMsg(m.startup.Retry(m.ctx))
		}
		return startupCheckedMsg(m.startup.Check(m.ctx))
	}
}

func (m *Model) initList() tea.Cmd {
	return func() tea.Msg {
		return listUpdatedMsg(m.movies.Init(m.ctx))
	}
}

func (m *Model) reloadList() tea.Cmd {
	return func() tea.Msg {
		if err := m.movies.LoadWishlist(m.ctx); err != nil {
			return listUpdatedMsg(err)
		}
		return listUpdatedMsg(m.movies.Refresh(m.ctx))
	}
}

func (m *Model) clearFilters() tea.Cmd {
	m.loadingMore = true
	return func() tea.Msg {
		if err := m.movies.SetSearchQuery(m.ctx, ""); err != nil {
			return listUpdatedMsg(err)
		}
		return listUpdatedMsg(m.movies.SetGenreFilter(m.ctx, nil))
	}
}

func (m *Model) toggleListWishlist(id int, flag bool) tea.Cmd {
	return func() tea.Msg {
		return listUpdatedMsg(m.movies.ToggleWishlist(m.ctx, id, flag))
	}
}

func (m *Model) openDetails(id int) tea.Cmd {
	m.prev = m.view
	m.view = DetailsView
	return func() tea.Msg {
		return detailsLoadedMsg(m.details.Load(m.ctx, id))
	}
}

func (m *Model) loadWishlist() tea.Cmd {
	return func() tea.Msg {
		return wishlistLoadedMsg(m.wishlist.Load(m.ctx))
	}
}

// startSync runs a forced refresh, streaming progress until the result arrives.
func (m *Model) startSync() tea.Cmd {
	m.view = SyncView
	m.syncResult = nil
	m.progress = tasks.ProgressUpdate{Message: "Starting sync..."}
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	m.syncDone = make(chan models.Result[tasks.SyncReport], 1)

	progress, done := m.progressChan, m.syncDone
	go func() {
		result := m.repo.ForceSync(m.ctx, progress)
		close(progress)
		done <- result
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.syncDone
	return func() tea.Msg {
		if progress == nil {
			return nil
		}
		update, ok := <-progress
		if !ok {
			return syncCompleteMsg(<-done)
		}
		return syncProgressMsg(update)
	}
}

func (m *Model) renderStartup() string {
	st := m.startup.State()
	var b strings.Builder
	b.WriteString(styles.title.Render("moviex"))
	b.WriteString("\n")

	switch {
	case st.NoConnectivity:
		b.WriteString(styles.warn.Render("No internet connection. The catalog needs to be downloaded once before it can be browsed."))
		b.WriteString("\n\n")
		b.WriteString(m.help.ShortHelpView([]key.Binding{retryKey(), m.keys.quit}))
	case st.Err != nil:
		b.WriteString(styles.err.Render(st.Err.Message))
		b.WriteString("\n\n")
		b.WriteString(m.help.ShortHelpView([]key.Binding{retryKey(), m.keys.quit}))
	case st.FirstLaunch:
		b.WriteString("Downloading the movie catalog...")
	default:
		b.WriteString("Loading...")
	}
	return b.String()
}

func retryKey() key.Binding {
	return key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry"))
}

func (m *Model) renderList() string {
	st := m.movies.State()

	var filters []string
	if st.SelectedGenre != nil {
		filters = append(filters, "genre: "+*st.SelectedGenre)
	}
	if q := strings.TrimSpace(st.SearchQuery); q != "" {
		filters = append(filters, fmt.Sprintf("search: %q", q))
	}
	m.movieList.Title = "Movies"
	if len(filters) > 0 {
		m.movieList.Title += " (" + strings.Join(filters, ", ") + ")"
	}

	var b strings.Builder
	b.WriteString(m.movieList.View())
	b.WriteString("\n")

	switch {
	case st.Err != nil:
		b.WriteString(styles.err.Render(st.Err.Message))
	case st.Loading:
		b.WriteString(styles.help.Render("Loading..."))
	case st.Exhausted && len(st.Movies) == 0:
		b.WriteString(styles.warn.Render("No movies match."))
	default:
		b.WriteString(styles.help.Render(fmt.Sprintf("%d loaded • %d in wishlist", len(st.Movies), len(st.Wishlist))))
	}
	b.WriteString("\n\n")
	b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	return b.String()
}

func (m *Model) renderSearch() string {
	return fmt.Sprintf("%s\n\n%s\n\n%s",
		styles.title.Render("Search"),
		m.search.View(),
		m.help.ShortHelpView([]key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
			m.keys.back,
		}),
	)
}

func (m *Model) renderGenres() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Genres"))
	b.WriteString("\n")
	b.WriteString(m.genreInput.View())
	b.WriteString("\n\n")

	rows := append([]string{"All genres"}, m.genreMatches...)
	selected := m.movies.State().SelectedGenre
	for i, row := range rows {
		cursor := "  "
		if i == m.genreCursor {
			cursor = "> "
		}
		line := cursor + row
		if (i == 0 && selected == nil) || (i > 0 && selected != nil && *selected == row) {
			line = styles.ok.Render(line)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.up, m.keys.down,
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
		m.keys.back,
	}))
	return b.String()
}

func (m *Model) renderDetails() string {
	st := m.details.State()
	if st.Err != nil {
		return styles.err.Render(st.Err.Message) + "\n\n" + m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
	}
	if st.Movie == nil {
		return "Loading..."
	}

	mv := st.Movie
	var b strings.Builder
	title := fmt.Sprintf("%s (%s)", mv.Title, mv.Year)
	if st.InWishlist {
		title += " " + styles.star.Render("♥")
	}
	b.WriteString(styles.title.Render(title))
	b.WriteString("\n")

	fields := []struct{ label, value string }{
		{"Genres", mv.GenreLabel()},
		{"Runtime", formatter.FormatRuntime(mv.Runtime)},
		{"Director", mv.Director},
		{"Cast", mv.Actors},
		{"Poster", mv.PosterURL},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		fmt.Fprintf(&b, "%s %s\n", styles.label.Render(f.label+":"), f.value)
	}
	if mv.Plot != "" {
		b.WriteString("\n" + mv.Plot + "\n")
	}

	fmt.Fprintf(&b, "\n%s\n\n", styles.help.Render(fmt.Sprintf("%d movies in wishlist", st.WishlistCount)))
	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.wishlist, m.keys.back, m.keys.quit}))
	return b.String()
}

func (m *Model) renderWishlist() string {
	st := m.wishlist.State()
	var b strings.Builder
	b.WriteString(m.wishlistList.View())
	b.WriteString("\n")
	switch {
	case st.Err != nil:
		b.WriteString(styles.err.Render(st.Err.Message))
	case len(st.Movies) == 0 && !st.Loading:
		b.WriteString(styles.warn.Render("Your wishlist is empty."))
	}
	b.WriteString("\n\n")
	removeKey := key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "remove"))
	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.enter, removeKey, m.keys.tab, m.keys.quit}))
	return b.String()
}

func (m *Model) renderSync() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Syncing catalog"))
	b.WriteString("\n")

	if m.syncResult == nil {
		fmt.Fprintf(&b, "[%s] %s\n", m.progress.Phase, m.progress.Message)
		return b.String()
	}

	switch r := *m.syncResult; {
	case r.IsSuccess():
		report, _ := r.Data()
		b.WriteString(styles.ok.Render(fmt.Sprintf("Synced %d movies and %d genres in %s", report.MovieCount, report.GenreCount, report.Duration.Round(time.Millisecond))))
		if report.Invalid > 0 {
			b.WriteString("\n" + styles.warn.Render(fmt.Sprintf("%d invalid records skipped", report.Invalid)))
		}
	case r.IsError():
		b.WriteString(styles.err.Render(r.Failure().Message))
	default:
		b.WriteString(styles.warn.Render("A sync is already running."))
	}
	b.WriteString("\n\n")
	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit}))
	return b.String()
}
